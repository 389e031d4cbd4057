package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmehra2102/Restaurant-POS/internal/delivery"
	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/dmehra2102/Restaurant-POS/internal/order/application"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	"github.com/dmehra2102/Restaurant-POS/pkg/idempotency"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
)

type orderRequest struct {
	Table        string                 `json:"table"`
	Lang         string                 `json:"lang"`
	Items        []application.CartLine `json:"items"`
	NeedsReceipt bool                   `json:"needs_receipt"`
	SupersedeID  *int64                 `json:"supersede_id"`
	Token        string                 `json:"token" validate:"omitempty,max=64"`

	// delivery only
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	ScheduledFor string  `json:"scheduled_for"`
	DistanceKm   float64 `json:"distance_km"`
	Fee          uint64  `json:"fee"`
	Note         string  `json:"note"`
}

type placedResponse struct {
	OrderID  int64        `json:"order_id"`
	DailySeq int          `json:"daily_seq"`
	Total    domain.Money `json:"total"`
	Redirect string       `json:"redirect"`
}

func (h *Handler) landing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	open, err := h.deps.Settings.ShopOpen(ctx)
	if err != nil {
		h.fail(w, r, locale(r), err)
		return
	}
	policy, err := h.deps.Settings.DeliveryPolicy(ctx)
	if err != nil {
		h.fail(w, r, locale(r), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"shop_open":        open,
		"delivery_enabled": policy.Enabled,
		"locales":          i18n.Supported,
		"links": map[string]string{
			"menu":     "/menu",
			"delivery": "/delivery/setup",
			"kitchen":  "/kitchen/",
		},
	})
}

func (h *Handler) menu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := locale(r)

	sections, err := h.deps.Catalog.Menu(ctx, loc)
	if err != nil {
		h.fail(w, r, loc, err)
		return
	}
	open, err := h.deps.Settings.ShopOpen(ctx)
	if err != nil {
		h.fail(w, r, loc, err)
		return
	}

	resp := map[string]any{
		"locale":    loc,
		"table":     r.URL.Query().Get("table"),
		"shop_open": open,
		"sections":  sections,
	}
	// editing: hand back the pending order so the page can prefill the cart
	if raw := r.URL.Query().Get("edit_oid"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.fail(w, r, loc, badRequest(err))
			return
		}
		o, err := h.deps.Board.Receipt(ctx, id)
		if err != nil {
			h.fail(w, r, loc, err)
			return
		}
		if o.Status == domain.StatusPending {
			resp["edit_order"] = o
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) submitMenu(w http.ResponseWriter, r *http.Request) {
	h.placeOrder(w, r, false)
}

func (h *Handler) submitDelivery(w http.ResponseWriter, r *http.Request) {
	h.placeOrder(w, r, true)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request, isDelivery bool) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder")
	defer span.End()

	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, locale(r), badRequest(err))
		return
	}
	loc := locale(r)
	if req.Lang != "" {
		loc = i18n.Parse(req.Lang)
	}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, loc, badRequest(err))
		return
	}
	if raw := r.URL.Query().Get("edit_oid"); raw != "" && req.SupersedeID == nil {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.fail(w, r, loc, badRequest(err))
			return
		}
		req.SupersedeID = &id
	}

	var tokenKey string
	if req.Token != "" {
		tokenKey = idempotency.Key("submit", req.Token)
		seen, err := h.deps.Tokens.Seen(ctx, tokenKey)
		if err != nil {
			// the guard is best effort; a broken store must not stop orders
			h.log.Warn("submission token check failed", "err", err)
			tokenKey = ""
		} else if seen {
			h.fail(w, r, loc, errDuplicateSubmission)
			return
		}
	}

	sub := application.Submission{
		Delivery:     isDelivery,
		Table:        req.Table,
		Locale:       loc,
		Cart:         req.Items,
		NeedsReceipt: req.NeedsReceipt,
		SupersedeID:  req.SupersedeID,
	}
	if isDelivery {
		sub.Form = &application.DeliveryForm{
			Name:             req.Name,
			Phone:            req.Phone,
			Address:          req.Address,
			ScheduledFor:     req.ScheduledFor,
			QuotedDistanceKm: req.DistanceKm,
			QuotedFee:        req.Fee,
			Note:             req.Note,
		}
	}

	placed, err := h.deps.Intake.PlaceOrder(ctx, sub)
	if err != nil {
		if tokenKey != "" {
			if rerr := h.deps.Tokens.Release(ctx, tokenKey); rerr != nil {
				h.log.Warn("release submission token", "err", rerr)
			}
		}
		h.fail(w, r, loc, err)
		return
	}
	span.SetAttributes(attribute.Int64("order.id", placed.OrderID))

	q := url.Values{"order_id": {strconv.FormatInt(placed.OrderID, 10)}, "lang": {string(loc)}}
	writeJSON(w, http.StatusCreated, placedResponse{
		OrderID:  placed.OrderID,
		DailySeq: placed.DailySeq,
		Total:    placed.Total,
		Redirect: "/success?" + q.Encode(),
	})
}

func (h *Handler) success(w http.ResponseWriter, r *http.Request) {
	loc := locale(r)
	id, err := strconv.ParseInt(r.URL.Query().Get("order_id"), 10, 64)
	if err != nil {
		h.fail(w, r, loc, badRequest(err))
		return
	}
	o, err := h.deps.Board.Receipt(r.Context(), id)
	if err != nil {
		h.fail(w, r, loc, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order_id":  o.ID,
		"daily_seq": o.DailySeq,
		"total":     o.Total,
		"status":    o.Status,
		"summary":   domain.Summarize(o.Items, loc),
		"message":   fmt.Sprintf(thanks.In(loc), o.DailySeq),
	})
}

var thanks = i18n.Text{
	i18n.ZH: "感謝您的訂購！您的號碼是 %d 號。",
	i18n.EN: "Thank you! Your number is %d.",
	i18n.JA: "ご注文ありがとうございます。番号は %d 番です。",
	i18n.KO: "주문 감사합니다! 번호는 %d번입니다.",
}

func (h *Handler) deliveryMenu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := locale(r)
	policy, err := h.deps.Settings.DeliveryPolicy(ctx)
	if err != nil {
		h.fail(w, r, loc, err)
		return
	}
	if !policy.Enabled {
		h.fail(w, r, loc, domain.ErrDeliveryDisabled)
		return
	}
	sections, err := h.deps.Catalog.Menu(ctx, loc)
	if err != nil {
		h.fail(w, r, loc, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"locale":   loc,
		"sections": sections,
		"policy": map[string]any{
			"min_price":  policy.MinPrice,
			"max_km":     policy.MaxKm,
			"base_fee":   policy.BaseFee,
			"fee_per_km": policy.FeePerKm,
		},
	})
}

func (h *Handler) deliverySetup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"days": delivery.Slots(h.now(), domain.Zone),
	})
}

type checkRequest struct {
	Address string `json:"address" validate:"required,max=200"`
}

func (h *Handler) deliveryCheck(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeliveryCheck")
	defer span.End()
	loc := locale(r)

	var req checkRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, loc, badRequest(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, loc, badRequest(err))
		return
	}
	policy, err := h.deps.Settings.DeliveryPolicy(ctx)
	if err != nil {
		h.fail(w, r, loc, err)
		return
	}
	if !policy.Enabled {
		h.fail(w, r, loc, domain.ErrDeliveryDisabled)
		return
	}

	adm := h.deps.Gate.Admit(ctx, req.Address, policy)
	resp := map[string]any{
		"admission": adm,
		"min_price": policy.MinPrice,
	}
	if !adm.Admit {
		resp["message"] = message(codeOutOfRange, loc, []any{adm.DistanceKm, policy.MaxKm})
	}
	writeJSON(w, http.StatusOK, resp)
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(errors.New("invalid id " + strconv.Quote(raw)))
	}
	return id, nil
}
