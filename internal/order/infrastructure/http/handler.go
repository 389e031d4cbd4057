package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	catalog "github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/delivery"
	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/dmehra2102/Restaurant-POS/internal/order/application"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	report "github.com/dmehra2102/Restaurant-POS/internal/report/application"
	"github.com/dmehra2102/Restaurant-POS/internal/settings"
	"github.com/dmehra2102/Restaurant-POS/pkg/idempotency"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Intake interface {
	PlaceOrder(ctx context.Context, sub application.Submission) (application.Placed, error)
}

type Board interface {
	Today() domain.Day
	ListToday(ctx context.Context, currentMaxSeq int) (application.BoardView, error)
	Complete(ctx context.Context, id int64) error
	Cancel(ctx context.Context, id int64) error
	SalesRanking(ctx context.Context, r domain.Range) ([]domain.ItemCount, error)
	Receipt(ctx context.Context, id int64) (domain.Order, error)
	DailyFigures(ctx context.Context, day domain.Day) (domain.Figures, error)
}

type Catalog interface {
	Menu(ctx context.Context, loc i18n.Locale) ([]catalog.Section, error)
	Products(ctx context.Context) ([]catalog.Product, error)
	Save(ctx context.Context, p catalog.Product) (int64, error)
	SetAvailability(ctx context.Context, id int64, available bool) error
}

type Settings interface {
	ShopOpen(ctx context.Context) (bool, error)
	DeliveryPolicy(ctx context.Context) (settings.Policy, error)
	All(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, values map[string]string) error
}

type Admitter interface {
	Admit(ctx context.Context, rawAddress string, policy settings.Policy) delivery.Admission
}

type Reports interface {
	SendAsync(pool report.Submitter, req report.Request) error
}

type Deps struct {
	Intake   Intake
	Board    Board
	Catalog  Catalog
	Settings Settings
	Gate     Admitter
	Reports  Reports
	Pool     report.Submitter
	Tokens   idempotency.Claimer
}

type Handler struct {
	log      *slog.Logger
	deps     Deps
	validate *validator.Validate
	tracer   trace.Tracer
	now      func() time.Time
}

func NewHandler(log *slog.Logger, deps Deps) *Handler {
	return &Handler{
		log:      log,
		deps:     deps,
		validate: validator.New(),
		tracer:   otel.Tracer("pos-http"),
		now:      time.Now,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.landing)
	r.Get("/menu", h.menu)
	r.Post("/menu", h.submitMenu)
	r.Get("/success", h.success)

	r.Route("/delivery", func(r chi.Router) {
		r.Get("/", h.deliveryMenu)
		r.Post("/", h.submitDelivery)
		r.Get("/setup", h.deliverySetup)
		r.Post("/check", h.deliveryCheck)
	})

	r.Route("/kitchen", func(r chi.Router) {
		r.Get("/", h.board)
		r.Get("/check_new_orders", h.checkNewOrders)
		r.Get("/sales_ranking", h.salesRanking)
		r.Get("/print_order/{id}", h.printOrder)
		r.Get("/report", h.dailyReport)
		for _, m := range []string{http.MethodPost, http.MethodGet} {
			r.Method(m, "/complete/{id}", http.HandlerFunc(h.complete))
			r.Method(m, "/cancel/{id}", http.HandlerFunc(h.cancel))
		}
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/admin", h.adminPage)
		r.Post("/admin", h.adminAction)
		r.Post("/products", h.saveProduct)
		r.Post("/products/{id}/availability", h.setAvailability)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}

func locale(r *http.Request) i18n.Locale {
	return i18n.Parse(r.URL.Query().Get("lang"))
}
