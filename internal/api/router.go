package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/beliefdrift/beliefdrift/internal/api/handlers"
	mw "github.com/beliefdrift/beliefdrift/internal/api/middleware"
	"github.com/beliefdrift/beliefdrift/internal/config"
	"github.com/beliefdrift/beliefdrift/internal/domain"
	"github.com/beliefdrift/beliefdrift/internal/metricslog"
	"github.com/beliefdrift/beliefdrift/internal/service"
	"github.com/beliefdrift/beliefdrift/internal/store"
	"github.com/beliefdrift/beliefdrift/internal/worldmodel"
)

// App holds the router and the background monitor for lifecycle management.
type App struct {
	Router    *chi.Mux
	Monitor   *service.MonitorService
	Container *worldmodel.Container

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	recordStore := store.NewRecordStore(db)

	// Belief graphs
	container := worldmodel.NewContainer()

	// Metrics log (JSONL sidecar of the record store)
	metricsLog, err := metricslog.NewWriter(config.MetricsLogPath())
	if err != nil {
		logger.Warn("metrics log unavailable", zap.String("path", config.MetricsLogPath()), zap.Error(err))
		metricsLog = nil
	}

	// Decision config; absent config leaves the action hook disabled.
	decisionConf, err := config.LoadDecisionConfig(config.DecisionConfigPath())
	if err != nil {
		logger.Warn("decision config unavailable", zap.Error(err))
	} else if decisionConf == nil {
		logger.Info("no decision config set, belief action hook disabled")
	}

	// Services
	monitorSvc := service.NewMonitorService(container, recordStore, metricsLog, decisionConf, logger)
	monitorSvc.SetInterval(config.MonitorInterval())
	monitorSvc.SetDivergenceMetric(config.DivergenceMetric())

	// Handlers
	graphHandler := handlers.NewGraphHandler(container)
	divergenceHandler := handlers.NewDivergenceHandler()
	decisionHandler := handlers.NewDecisionHandler()
	recordsHandler := handlers.NewRecordsHandler(monitorSvc, recordStore)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Monitor:   monitorSvc,
		Container: container,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/graphs/{role}", func(r chi.Router) {
			r.Get("/", graphHandler.Get)
			r.Put("/", graphHandler.Update)
		})

		r.Post("/divergence", divergenceHandler.Compare)
		r.Post("/decision", decisionHandler.Decide)
		r.Post("/evaluate", recordsHandler.Evaluate)

		r.Route("/records", func(r chi.Router) {
			r.Get("/", recordsHandler.List)
			r.Get("/similar", recordsHandler.Similar)
		})
	})

	return app
}

// NewRouter returns just the chi.Mux for callers that manage lifecycle
// themselves.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy interfaces at compile time.
var _ domain.RecordStore = (*store.RecordStore)(nil)
