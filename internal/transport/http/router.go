package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ncetprep/educator-gate/internal/application/code"
	"github.com/ncetprep/educator-gate/internal/application/gate"
	"github.com/ncetprep/educator-gate/internal/application/identity"
	"github.com/ncetprep/educator-gate/internal/application/profile"
	"github.com/ncetprep/educator-gate/internal/config"
	"github.com/ncetprep/educator-gate/internal/domain"
	"github.com/ncetprep/educator-gate/internal/infrastructure/google"
	jwtinfra "github.com/ncetprep/educator-gate/internal/infrastructure/jwt"
	"github.com/ncetprep/educator-gate/internal/infrastructure/smtp"
	"github.com/ncetprep/educator-gate/internal/transport/http/handler"
	appmiddleware "github.com/ncetprep/educator-gate/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	CodeRepo    CodeRepository
	ProfileRepo ProfileRepository
	SessionRepo SessionRepository
	Verifier    *google.Verifier
	Mailer      smtp.Mailer
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// Fixed-window throttle for code-verification attempts, keyed by source
	// address: the sixth attempt inside the window is rejected.
	verifyLimiter := appmiddleware.NewWindowLimiter(cfg.VerifyAttemptLimit, cfg.VerifyAttemptWindow)
	// 5 requests/second, burst of 10, for the remaining public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	profileSvc := profile.NewService(deps.ProfileRepo)
	identitySvc := identity.NewService(identity.ServiceDeps{
		SessionRepo: deps.SessionRepo,
		ProfileRepo: deps.ProfileRepo,
		Verifier:    deps.Verifier,
		Tokens:      deps.JWTProvider,
	})
	gateSvc := gate.NewService(gate.ServiceDeps{
		Codes:    deps.CodeRepo,
		Profiles: profileSvc,
		Identity: identitySvc,
		Tokens:   deps.JWTProvider,
		Pepper:   cfg.AccessCodePepper,
	})
	codeSvc := code.NewService(deps.CodeRepo, deps.Mailer, cfg.AccessCodePepper)

	healthH := handler.NewHealthHandler()
	gateH := handler.NewGateHandler(gateSvc, verifyLimiter)
	sessionH := handler.NewSessionHandler(identitySvc, cfg.SessionTTL)
	profileH := handler.NewProfileHandler(profileSvc)
	codeH := handler.NewCodeHandler(codeSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/gate/verify-code", gateH.VerifyCode)
		r.Post("/gate/complete", gateH.CompleteBinding)
		r.With(sensitiveRL.Limit).Post("/sessions/google", sessionH.SignInWithGoogle)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)
			r.Get("/profiles/me", profileH.Me)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/codes", codeH.Issue)
				r.Get("/codes", codeH.List)
				r.Get("/codes/{id}", codeH.Get)
				r.Delete("/codes/{id}", codeH.Deactivate)
			})
		})
	})

	return r
}
