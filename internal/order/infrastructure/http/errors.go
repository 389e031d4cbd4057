package http

import (
	"errors"
	"fmt"
	"net/http"

	catalog "github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/settings"
	"github.com/dmehra2102/Restaurant-POS/pkg/workpool"
)

const (
	codeShopClosed         = "shop_closed"
	codeEmptyCart          = "empty_cart"
	codeInvalidLine        = "invalid_line"
	codeIncompleteDelivery = "incomplete_delivery"
	codeDeliveryDisabled   = "delivery_disabled"
	codeBelowMinimum       = "below_minimum"
	codeOutOfRange         = "out_of_range"
	codeDuplicate          = "duplicate_submission"
	codeNotFound           = "not_found"
	codeBadRequest         = "bad_request"
	codeBusy               = "busy"
	codeInternal           = "internal"
)

// messages holds the customer-facing text per error code. Entries with
// verbs are formatted with the error's parameters.
var messages = map[string]i18n.Text{
	codeShopClosed: {
		i18n.ZH: "本店目前暫停接單，請稍後再試。",
		i18n.EN: "We are not taking orders right now. Please try again later.",
		i18n.JA: "ただいま注文を受け付けておりません。",
		i18n.KO: "지금은 주문을 받지 않습니다.",
	},
	codeEmptyCart: {
		i18n.ZH: "購物車是空的。",
		i18n.EN: "Your cart is empty.",
		i18n.JA: "カートが空です。",
		i18n.KO: "장바구니가 비어 있습니다.",
	},
	codeInvalidLine: {
		i18n.ZH: "餐點數量有誤。",
		i18n.EN: "One of the items is not valid.",
		i18n.JA: "商品の内容が正しくありません。",
		i18n.KO: "잘못된 항목이 있습니다.",
	},
	codeIncompleteDelivery: {
		i18n.ZH: "外送需填寫姓名、電話、地址與時間。",
		i18n.EN: "Delivery needs a name, phone number, address and time.",
		i18n.JA: "配達には氏名・電話番号・住所・時間が必要です。",
		i18n.KO: "배달에는 이름, 전화번호, 주소, 시간이 필요합니다.",
	},
	codeDeliveryDisabled: {
		i18n.ZH: "目前不提供外送。",
		i18n.EN: "Delivery is not available at the moment.",
		i18n.JA: "現在、配達は承っておりません。",
		i18n.KO: "현재 배달이 불가능합니다.",
	},
	codeBelowMinimum: {
		i18n.ZH: "外送最低消費為 %d 元。",
		i18n.EN: "Delivery orders need a minimum of %d.",
		i18n.JA: "配達の最低注文金額は %d 元です。",
		i18n.KO: "배달 최소 주문 금액은 %d 원입니다.",
	},
	codeOutOfRange: {
		i18n.ZH: "地址距離 %.1f 公里，超出外送範圍 %.1f 公里。",
		i18n.EN: "The address is %.1f km away; we deliver within %.1f km.",
		i18n.JA: "住所まで %.1f km あり、配達範囲 %.1f km を超えています。",
		i18n.KO: "주소까지 %.1f km로 배달 범위 %.1f km를 벗어납니다.",
	},
	codeDuplicate: {
		i18n.ZH: "這筆訂單已經送出。",
		i18n.EN: "This order was already submitted.",
		i18n.JA: "この注文はすでに送信されています。",
		i18n.KO: "이미 제출된 주문입니다.",
	},
	codeNotFound: {
		i18n.ZH: "找不到資料。",
		i18n.EN: "Not found.",
	},
	codeBadRequest: {
		i18n.ZH: "請求格式錯誤。",
		i18n.EN: "Malformed request.",
	},
	codeBusy: {
		i18n.ZH: "系統忙碌中，請稍後再試。",
		i18n.EN: "Busy, try again shortly.",
	},
	codeInternal: {
		i18n.ZH: "系統錯誤。",
		i18n.EN: "Something went wrong.",
	},
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errDuplicateSubmission = errors.New("duplicate submission")

// classify maps an error to its status and code. Anything unknown is an
// internal fault and keeps its details out of the response.
func classify(err error) (int, string, []any) {
	var (
		below *domain.BelowMinimumError
		out   *domain.OutOfRangeError
	)
	switch {
	case errors.Is(err, domain.ErrShopClosed):
		return http.StatusForbidden, codeShopClosed, nil
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, codeEmptyCart, nil
	case errors.Is(err, domain.ErrInvalidLine):
		return http.StatusBadRequest, codeInvalidLine, nil
	case errors.Is(err, domain.ErrIncompleteDelivery):
		return http.StatusBadRequest, codeIncompleteDelivery, nil
	case errors.Is(err, domain.ErrDeliveryDisabled):
		return http.StatusForbidden, codeDeliveryDisabled, nil
	case errors.As(err, &below):
		return http.StatusBadRequest, codeBelowMinimum, []any{uint64(below.Min)}
	case errors.As(err, &out):
		return http.StatusUnprocessableEntity, codeOutOfRange, []any{out.DistanceKm, out.LimitKm}
	case errors.Is(err, errDuplicateSubmission):
		return http.StatusConflict, codeDuplicate, nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, codeNotFound, nil
	case errors.Is(err, settings.ErrUnknownKey), errors.Is(err, catalog.ErrMissingName),
		errors.Is(err, catalog.ErrInvalidProduct), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, codeBadRequest, nil
	case errors.Is(err, workpool.ErrQueueFull), errors.Is(err, workpool.ErrClosed):
		return http.StatusServiceUnavailable, codeBusy, nil
	}
	return http.StatusInternalServerError, codeInternal, nil
}

var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

func message(code string, loc i18n.Locale, args []any) string {
	text := messages[code].In(loc)
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, loc i18n.Locale, err error) {
	status, code, args := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		h.log.Info("request rejected", "path", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, errorBody{Error: code, Message: message(code, loc, args)})
}
