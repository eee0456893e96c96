package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/bahir-ride/api/internal/application/auth"
	"github.com/bahir-ride/api/internal/application/document"
	"github.com/bahir-ride/api/internal/application/otc"
	"github.com/bahir-ride/api/internal/application/session"
	"github.com/bahir-ride/api/internal/config"
	"github.com/bahir-ride/api/internal/domain"
	jwtinfra "github.com/bahir-ride/api/internal/infrastructure/jwt"
	"github.com/bahir-ride/api/internal/infrastructure/postgres"
	redisinfra "github.com/bahir-ride/api/internal/infrastructure/redis"
	s3infra "github.com/bahir-ride/api/internal/infrastructure/s3"
	"github.com/bahir-ride/api/internal/infrastructure/smtp"
	"github.com/bahir-ride/api/internal/infrastructure/sns"
	"github.com/bahir-ride/api/internal/transport/http/handler"
	appmiddleware "github.com/bahir-ride/api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	IdentityRepo     *postgres.IdentityRepo
	VerificationRepo *postgres.VerificationRepo
	CodeStore        *redisinfra.CodeStore
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	JWTProvider      *jwtinfra.Provider
	Logger           *slog.Logger
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, per remote IP. This throttles raw
	// request volume; the per-identifier hourly quota is enforced inside
	// the code engine.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	limiter := otc.NewRateLimiter(deps.CodeStore)
	codes := otc.NewService(deps.CodeStore, otc.NewCryptoGenerator(), limiter)
	sessions := session.NewService(deps.JWTProvider)
	authSvc := auth.NewService(
		deps.IdentityRepo, deps.VerificationRepo, codes, limiter, sessions,
		deps.Mailer, deps.SMSSender, cfg.OTPMaxPerHour, deps.Logger)
	docSvc := document.NewService(deps.S3Store, deps.IdentityRepo, deps.VerificationRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	resetH := handler.NewPasswordResetHandler(authSvc)
	docH := handler.NewDocumentHandler(docSvc)
	statusH := handler.NewStatusHandler(authSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			// Public, throttled.
			r.With(sensitiveRL.Limit).Post("/register", authH.Register)
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.With(sensitiveRL.Limit).Post("/request-otp", authH.RequestOTP)
			r.With(sensitiveRL.Limit).Post("/resend-otp", authH.ResendOTP)
			r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOTP)
			r.With(sensitiveRL.Limit).Post("/forgot-password", resetH.Forgot)
			r.With(sensitiveRL.Limit).Post("/verify-reset-otp", resetH.VerifyCode)
			r.With(sensitiveRL.Limit).Post("/reset-password", resetH.Reset)
			r.Post("/refresh", authH.Refresh)

			// Authenticated.
			r.Group(func(r chi.Router) {
				r.Use(authMw)

				r.Get("/me", authH.Me)
				r.Post("/logout", authH.Logout)
				r.Post("/documents", docH.Upload)

				// Back-office.
				r.Group(func(r chi.Router) {
					r.Use(appmiddleware.RequireRole(
						domain.RoleSupport, domain.RoleAdmin, domain.RoleSuperAdmin))

					r.Get("/users/{id}/documents", docH.ViewURLs)
					r.Put("/users/{id}/status", statusH.Update)
				})
			})
		})
	})

	return r
}
