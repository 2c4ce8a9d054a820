package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Routes(m *Middleware, corsOrigins []string, rateLimitRPM int) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(m.CORS(corsOrigins))
	r.Use(m.RateLimit(rateLimitRPM))

	// Health endpoints
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	// Public reads
	r.Get("/posts", h.ListPosts)
	r.Get("/posts.json", h.ListPosts)
	r.Get("/posts/{id:[0-9]+}", h.GetPost)
	r.Get("/posts/{id:[0-9]+}.json", h.GetPost)
	r.Get("/feed.atom", h.AtomFeed)

	// Account
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)

	// Authoring actions, gated by the configured auth policy
	r.Group(func(r chi.Router) {
		r.Use(m.RequireAuth(h.policy))

		r.Get("/drafts", h.ListDrafts)
		r.Post("/posts", h.CreatePost)
		r.Put("/posts/{id:[0-9]+}/edit", h.UpdatePost)
		r.Post("/posts/{id:[0-9]+}/edit", h.UpdatePost)
		r.Post("/posts/{id:[0-9]+}/delete", h.DeletePost)
		r.Get("/logout", h.Logout)
		r.Post("/cache/flush", h.FlushCache)
	})

	return r
}
