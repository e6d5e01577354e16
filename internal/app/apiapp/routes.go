package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/classpass/backend/internal/config"
	"github.com/classpass/backend/internal/domain/enums"
	authsvc "github.com/classpass/backend/internal/services/auth"
	checkinsvc "github.com/classpass/backend/internal/services/checkin"
	ratesvc "github.com/classpass/backend/internal/services/rate"
	rostersvc "github.com/classpass/backend/internal/services/roster"
	"github.com/classpass/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService    *authsvc.Service
	CheckinService *checkinsvc.Service
	RateLimiter    *ratesvc.Limiter
	RosterService  *rostersvc.Service
	Users          handlers.UserDirectory
	Logger         *zap.Logger
	Config         config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	checkinHandler := handlers.NewCheckinHandler(deps.CheckinService, deps.RateLimiter)
	attendanceHandler := handlers.NewAttendanceHandler(deps.CheckinService)
	rosterHandler := handlers.NewRosterHandler(deps.RosterService)
	meHandler := handlers.NewMeHandler(deps.Users)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	instructorMW := RequireRole(enums.RoleInstructor, enums.RoleOwner)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Get("/me", meHandler.Get)
		r.With(authMW, instructorMW).Post("/checkin/issue", checkinHandler.Issue)
		r.With(authMW).Post("/checkin/redeem", checkinHandler.Redeem)
		r.With(authMW, instructorMW).Post("/checkin/revoke", checkinHandler.Revoke)
		r.With(authMW, instructorMW).Get("/checkin/active", checkinHandler.Active)
		r.With(authMW, instructorMW).Get("/attendance", attendanceHandler.List)
		r.With(authMW, instructorMW).Get("/roster", rosterHandler.List)
	})
}
