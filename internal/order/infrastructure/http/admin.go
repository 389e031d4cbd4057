package http

import (
	"mime"
	"net/http"

	catalog "github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	report "github.com/dmehra2102/Restaurant-POS/internal/report/application"
	"github.com/dmehra2102/Restaurant-POS/internal/settings"
)

const (
	actionSaveSettings  = "save_settings"
	actionTestEmail     = "test_email"
	actionSendReportNow = "send_report_now"
)

type adminRequest struct {
	Action   string            `json:"action" validate:"required,oneof=save_settings test_email send_report_now"`
	Settings map[string]string `json:"settings"`
	Date     string            `json:"date"`
}

func (h *Handler) adminPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values, err := h.deps.Settings.All(ctx)
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	products, err := h.deps.Catalog.Products(ctx)
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"settings": values,
		"products": products,
	})
}

func (h *Handler) adminAction(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AdminAction")
	defer span.End()

	req, err := readAdminRequest(r)
	if err != nil {
		h.fail(w, r, i18n.Native, badRequest(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, i18n.Native, badRequest(err))
		return
	}

	switch req.Action {
	case actionSaveSettings:
		if err := h.deps.Settings.Save(ctx, req.Settings); err != nil {
			h.fail(w, r, i18n.Native, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
		return
	case actionTestEmail:
		h.queueReport(w, r, report.Request{Manual: manualMail(req.Settings), Test: true})
	case actionSendReportNow:
		rep := report.Request{Manual: manualMail(req.Settings)}
		if req.Date != "" {
			day, err := domain.ParseDay(req.Date)
			if err != nil {
				h.fail(w, r, i18n.Native, badRequest(err))
				return
			}
			rep.Day = day
		}
		h.queueReport(w, r, rep)
	}
}

func (h *Handler) queueReport(w http.ResponseWriter, r *http.Request, req report.Request) {
	if err := h.deps.Reports.SendAsync(h.deps.Pool, req); err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// manualMail picks the mail fields typed on the admin page so a test can
// run before they are saved. Nil when none were sent.
func manualMail(values map[string]string) *settings.Mail {
	m := settings.Mail{
		To:     values[settings.KeyReportEmail],
		From:   values[settings.KeySenderEmail],
		APIKey: values[settings.KeyResendAPIKey],
	}
	if m == (settings.Mail{}) {
		return nil
	}
	return &m
}

// readAdminRequest accepts the admin page's form post as well as JSON.
func readAdminRequest(r *http.Request) (adminRequest, error) {
	var req adminRequest
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		return req, decodeJSON(r, &req)
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Settings = make(map[string]string)
	for k, vs := range r.PostForm {
		switch k {
		case "action":
			req.Action = vs[0]
		case "date":
			req.Date = vs[0]
		default:
			req.Settings[k] = vs[len(vs)-1]
		}
	}
	return req, nil
}

func (h *Handler) saveProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := decodeJSON(r, &p); err != nil {
		h.fail(w, r, i18n.Native, badRequest(err))
		return
	}
	id, err := h.deps.Catalog.Save(r.Context(), p)
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

type availabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

func (h *Handler) setAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	var req availabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, i18n.Native, badRequest(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, i18n.Native, badRequest(err))
		return
	}
	if err := h.deps.Catalog.SetAvailability(r.Context(), id, *req.Available); err != nil {
		h.fail(w, r, i18n.Native, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "available": *req.Available})
}
