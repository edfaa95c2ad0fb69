package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"koffa/internal/config"
	"koffa/internal/transport/httpserver/handler"
	authmw "koffa/internal/transport/httpserver/middleware"
	"koffa/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, profiles authmw.ProfileSaver, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(authmw.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)
		r.Post("/invitations/validate", handlers.Invitations.Validate)
		r.Get("/invitations/check/{code}", handlers.Invitations.Check)

		auth := authmw.NewSupabaseAuth(cfg.Supabase, profiles, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.Common.AuthMe)
			r.Get("/profiles/me", handlers.Common.GetProfileMe)

			r.Post("/invitations/verify", handlers.Invitations.Verify)
			r.Post("/invitations/redeem", handlers.Invitations.Redeem)

			r.Get("/families/me", handlers.Families.GetFamilyMe)
			r.Post("/families", handlers.Families.CreateFamily)
			r.Post("/families/leave", handlers.Families.LeaveFamily)
			r.Patch("/families/me", handlers.Families.UpdateFamily)
			r.Get("/families/me/members", handlers.Families.ListFamilyMembers)
			r.Delete("/families/me/members/{user_id}", handlers.Families.RemoveFamilyMember)

			r.Get("/families/me/invitations", handlers.Families.ListInvitations)
			r.Post("/families/me/invitations", handlers.Families.CreateInvitation)

			r.Get("/families/me/settings", handlers.Families.GetSettings)
			r.Put("/families/me/settings/members/{user_id}", handlers.Families.UpdateMemberSettings)
		})
	})

	return r
}
