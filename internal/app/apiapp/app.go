package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/classpass/backend/internal/config"
	tginfra "github.com/classpass/backend/internal/infra/telegram"
	"github.com/classpass/backend/internal/jobs/cleanup"
	pgrepo "github.com/classpass/backend/internal/repo/postgres"
	redrepo "github.com/classpass/backend/internal/repo/redis"
	authsvc "github.com/classpass/backend/internal/services/auth"
	checkinsvc "github.com/classpass/backend/internal/services/checkin"
	notifysvc "github.com/classpass/backend/internal/services/notify"
	ratesvc "github.com/classpass/backend/internal/services/rate"
	rostersvc "github.com/classpass/backend/internal/services/roster"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler

	notify     *notifysvc.Dispatcher
	cleanupJob *cleanup.Job
	bgCancel   context.CancelFunc
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, int32(cfg.Postgres.MaxConns)); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	userRepo := pgrepo.NewUserRepo(pool)
	rosterRepo := pgrepo.NewRosterRepo(pool)
	attendanceRepo := pgrepo.NewAttendanceRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, userRepo, cfg.Auth.RefreshTTL)

	rosterService := rostersvc.NewService(rosterRepo)
	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Checkin.RatePerMinute, cfg.Checkin.RatePer10Sec)
	registry := checkinsvc.NewRegistry()

	var dispatcher *notifysvc.Dispatcher
	if cfg.Notify.TelegramToken != "" {
		notifier, err := tginfra.NewNotifier(cfg.Notify.TelegramToken)
		if err != nil {
			log.Warn("telegram init failed, guardian notices disabled", zap.Error(err))
		} else {
			dispatcher = notifysvc.NewDispatcher(notifier, userRepo, cfg.Notify.QueueSize, log)
		}
	}

	checkinDeps := checkinsvc.Dependencies{
		Registry: registry,
		Roster:   rosterService,
		Ledger:   attendanceRepo,
		Logger:   log,
	}
	if dispatcher != nil {
		checkinDeps.Notifier = dispatcher
	}
	checkinService := checkinsvc.NewService(checkinDeps, checkinsvc.Config{
		DefaultDuration: cfg.Checkin.DefaultDuration,
		MaxDuration:     cfg.Checkin.MaxDuration,
		GracePeriod:     cfg.Checkin.GracePeriod,
		Timezone:        cfg.Checkin.Timezone,
	})

	cleanupJob := cleanup.New(registry, cfg.Cleanup.SessionRetention, log)

	RegisterRoutes(r, Dependencies{
		AuthService:    authService,
		CheckinService: checkinService,
		RateLimiter:    rateLimiter,
		RosterService:  rosterService,
		Users:          userRepo,
		Logger:         log,
		Config:         cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
		notify:     dispatcher,
		cleanupJob: cleanupJob,
	}, nil
}

func (a *App) Run() error {
	bgCtx, cancel := context.WithCancel(context.Background())
	a.bgCancel = cancel

	if a.notify != nil {
		go a.notify.Run(bgCtx)
	}
	go func() {
		if err := a.cleanupJob.RunLoop(bgCtx, a.cfg.Cleanup.Interval); err != nil {
			a.logger.Error("cleanup loop failed", zap.Error(err))
		}
	}()

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.bgCancel != nil {
		a.bgCancel()
	}
	if a.notify != nil {
		a.notify.Wait()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
