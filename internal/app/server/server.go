package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/credits"
	"hrportal/internal/domain/demo"
	"hrportal/internal/domain/employee"
	"hrportal/internal/domain/lookup"
	"hrportal/internal/domain/profile"
	"hrportal/internal/domain/request"
	"hrportal/internal/domain/timesheet"
	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/cache"
	"hrportal/internal/platform/config"
	"hrportal/internal/platform/crypto"
	"hrportal/internal/platform/metrics"
	authhandler "hrportal/internal/transport/http/handlers/auth"
	credithandler "hrportal/internal/transport/http/handlers/credits"
	dashboardhandler "hrportal/internal/transport/http/handlers/dashboard"
	demohandler "hrportal/internal/transport/http/handlers/demo"
	employeehandler "hrportal/internal/transport/http/handlers/employees"
	profilehandler "hrportal/internal/transport/http/handlers/profile"
	requesthandler "hrportal/internal/transport/http/handlers/requests"
	timesheethandler "hrportal/internal/transport/http/handlers/timesheets"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/views"
)

const (
	formBodyBytes   = 1 << 20
	submitOnceTTL   = 10 * time.Minute
	readyTimeout    = 2 * time.Second
	shutdownTimeout = 15 * time.Second

	demoEmployees = 120
	demoSeed      = 20240601
)

type App struct {
	Config   config.Config
	Log      *logrus.Logger
	Metrics  *metrics.Collector
	Cache    *cache.Cache
	Sessions *middleware.Sessions
	Router   http.Handler

	closers []func() error
}

// New wires every dependency and builds the router. Nothing is dialed here:
// backends are called per request and Redis connects lazily.
func New(cfg config.Config, log *logrus.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	app := &App{Config: cfg, Log: log}
	if cfg.MetricsEnabled {
		app.Metrics = metrics.New()
	}

	var (
		store       cache.Store
		redisClient *redis.Client
	)
	switch cfg.CacheBackend {
	case config.CacheRedis:
		rs, err := cache.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, rs.Close)
		store, redisClient = rs, rs.Client()
	default:
		store = cache.NewMemoryStore()
	}
	app.Cache = cache.New(store, cache.WithMetrics(app.Metrics), cache.WithLogger(log), cache.WithFetchTimeout(cfg.BackendTimeout))

	primary, err := backend.New("primary", cfg.PrimaryAPIURL, cfg.BackendTimeout, backend.WithMetrics(app.Metrics), backend.WithLogger(log))
	if err != nil {
		return nil, err
	}
	ledger, err := backend.New("credits", cfg.CreditsAPIURL, cfg.BackendTimeout, backend.WithMetrics(app.Metrics), backend.WithLogger(log))
	if err != nil {
		return nil, err
	}

	sealer, err := crypto.New(cfg.SessionSealKey, cfg.SessionSecret)
	if err != nil {
		return nil, errors.Wrap(err, "session sealer")
	}
	codec := auth.NewSessionCodec(cfg.SessionSecret, sealer, cfg.SessionTTL)
	app.Sessions = middleware.NewSessions(codec, cfg.IsProduction(), log)

	renderer, err := views.New(app.Sessions, log, cfg.DemoEnabled)
	if err != nil {
		return nil, err
	}

	limitStore, err := middleware.NewLimiterStore(redisClient)
	if err != nil {
		return nil, err
	}

	authService := auth.NewService(auth.NewStore(ledger), codec)
	employeeService := employee.NewService(employee.NewStore(primary), app.Cache)
	lookupService := lookup.NewService(lookup.NewStore(primary), app.Cache)
	requestService := request.NewService(request.NewStore(primary), app.Cache, timesheet.ResourceTimesheets)
	timesheetService := timesheet.NewService(timesheet.NewStore(primary), app.Cache)
	profileService := profile.NewService(profile.NewStore(primary, ledger), app.Cache)
	creditService := credits.NewService(credits.NewStore(ledger), app.Cache)

	authHandler := authhandler.NewHandler(authService, app.Sessions, renderer, log)
	dashboardHandler := dashboardhandler.NewHandler(requestService, creditService, renderer, log)
	employeeHandler := employeehandler.NewHandler(employeeService, lookupService, renderer, log)
	requestHandler := requesthandler.NewHandler(requestService, renderer, log)
	timesheetHandler := timesheethandler.NewHandler(timesheetService, renderer, log)
	profileHandler := profilehandler.NewHandler(profileService, renderer, log)
	creditHandler := credithandler.NewHandler(creditService, profileService, renderer, log, nil)
	creditHandler.Once = middleware.SubmitOnce(store, submitOnceTTL, creditHandler.Duplicate(), log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log, app.Metrics))
	router.Use(middleware.Recoverer(log))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(formBodyBytes, cfg.MaxBodyBytes))
	router.Use(app.Sessions.Load)
	router.Use(middleware.RateLimit(limitStore, cfg.RateLimitPerMinute, log))
	router.Use(middleware.SensitiveRateLimit(limitStore, cfg.RateLimitPerMinute, log))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.WithError(err).Warn("cache not ready")
			http.Error(w, "cache not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if app.Metrics != nil {
		router.Handle("/metrics", app.Metrics.Handler())
	}
	router.Handle("/static/*", renderer.Static())
	router.NotFound(renderer.NotFound().ServeHTTP)

	authHandler.RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)
		authHandler.RegisterSessionRoutes(r)
		dashboardHandler.RegisterRoutes(r)
		employeeHandler.RegisterRoutes(r)
		employeeHandler.RegisterAPIRoutes(r)
		requestHandler.RegisterRoutes(r)
		timesheetHandler.RegisterRoutes(r)
		profileHandler.RegisterRoutes(r)
		creditHandler.RegisterRoutes(r)

		if cfg.DemoEnabled {
			demoHandler := demohandler.NewHandler(
				demo.NewEmployeeStore(demoEmployees, demoSeed),
				demo.NewTimesheetStore(time.Now),
				renderer,
				log,
			)
			demoHandler.RegisterRoutes(r)
		}
	})

	app.Router = router
	return app, nil
}

func (a *App) Close() error {
	var first error
	for _, closer := range a.closers {
		if err := closer(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run serves until ctx is cancelled and then drains in-flight requests.
func Run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	app, err := New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.WithError(err).Warn("close failed")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr,
			"env":     cfg.Environment,
			"cache":   cfg.CacheBackend,
			"demo":    cfg.DemoEnabled,
			"primary": cfg.PrimaryAPIURL,
			"credits": cfg.CreditsAPIURL,
		}).Info("hr portal listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
}
