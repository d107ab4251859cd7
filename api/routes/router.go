package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bancore/backend/api/controllers"
	"github.com/bancore/backend/api/middleware"
	"github.com/bancore/backend/internal/accounts"
	"github.com/bancore/backend/internal/movements"
	"github.com/bancore/backend/internal/reports"
	"github.com/bancore/backend/pkg/config"
	"github.com/bancore/backend/pkg/db"
	"github.com/bancore/backend/pkg/logger"
	"github.com/bancore/backend/pkg/redis"
)

// RouterParams wires the HTTP surface.
type RouterParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	DBPinger  db.Pinger
	Redis     redis.Pinger
	Accounts  accounts.Service
	Movements movements.Service
	Reports   reports.Service
}

func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(params.Logger),
		middleware.RequestID(params.Logger),
		middleware.Logging(params.Logger),
		middleware.CORS(),
	)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(params.Config))
		r.Get("/ready", controllers.HealthReady(params.Config, params.Logger, params.DBPinger, params.Redis))
	})

	r.Route("/api/v1/accounts", func(r chi.Router) {
		r.Post("/", controllers.AccountCreate(params.Accounts, params.Logger))
		r.Get("/", controllers.AccountList(params.Accounts, params.Logger))
		r.Get("/{accountNumber}", controllers.AccountGet(params.Accounts, params.Logger))
		r.Patch("/{accountNumber}", controllers.AccountUpdate(params.Accounts, params.Logger))
		r.Delete("/{accountNumber}", controllers.AccountDeactivate(params.Accounts, params.Logger))
	})

	r.Route("/api/v1/movements", func(r chi.Router) {
		r.Post("/", controllers.MovementCreate(params.Movements, params.Logger))
		r.Get("/", controllers.MovementSearch(params.Movements, params.Logger))
		r.Get("/{movementId}", controllers.MovementGet(params.Movements, params.Logger))
		r.Put("/{movementId}", controllers.MovementRectify(params.Movements, params.Logger))
		r.Delete("/{movementId}", controllers.MovementVoid(params.Movements, params.Logger))
	})

	r.Get("/api/v1/reports", controllers.ReportGet(params.Reports, params.Logger))

	return r
}
