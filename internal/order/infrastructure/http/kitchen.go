package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
)

func (h *Handler) board(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Board.ListToday(r.Context(), 0)
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"day":     h.deps.Board.Today().String(),
		"orders":  view.Orders,
		"max_seq": view.MaxSeq,
	})
}

func (h *Handler) checkNewOrders(w http.ResponseWriter, r *http.Request) {
	current := 0
	if raw := r.URL.Query().Get("current_max_seq"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.fail(w, r, i18n.Native, badRequest(err))
			return
		}
		current = n
	}
	view, err := h.deps.Board.ListToday(r.Context(), current)
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) salesRanking(w http.ResponseWriter, r *http.Request) {
	today := h.deps.Board.Today()
	from, err := dayParam(r, "from", today)
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	to, err := dayParam(r, "to", today)
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	items, err := h.deps.Board.SalesRanking(r.Context(), domain.Range{From: from, To: to})
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":  from.String(),
		"to":    to.String(),
		"items": items,
	})
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.deps.Board.Complete)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.deps.Board.Cancel)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64) error) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	if r.Method == http.MethodGet {
		h.log.Warn("legacy GET transition", "path", r.URL.Path, "order_id", id)
	}
	if err := apply(r.Context(), id); err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "order_id": id})
}

func (h *Handler) printOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	o, err := h.deps.Board.Receipt(r.Context(), id)
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderReceipt(w, o); err != nil {
		h.log.Error("render receipt", "order_id", id, "err", err)
	}
}

func (h *Handler) dailyReport(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r, "date", h.deps.Board.Today())
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	figures, err := h.deps.Board.DailyFigures(r.Context(), day)
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	writeJSON(w, http.StatusOK, figures)
}

func dayParam(r *http.Request, name string, def domain.Day) (domain.Day, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	d, err := domain.ParseDay(raw)
	if err != nil {
		return domain.Day{}, badRequest(err)
	}
	return d, nil
}
