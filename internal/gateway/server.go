package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public — no auth required.
	r.Get("/health", g.handleHealth())

	r.Group(func(r chi.Router) {
		if g.config.Auth.IsConfigured() {
			r.Use(authMiddleware(g.config.Auth))
		}

		r.Get("/state", g.handleState())
		r.Get("/ws/state", g.handleStateSocket())
		r.Post("/chat", g.handleChat())

		r.Post("/voice/start", g.handleVoiceStart())
		r.Post("/voice/stop", g.handleVoiceStop())

		r.Route("/history", func(r chi.Router) {
			r.Get("/", g.handleHistory())
			r.Post("/save", g.handleHistorySave())
			r.Post("/load", g.handleHistoryLoad())
			r.Post("/clear", g.handleHistoryClear())
		})

		r.Get("/system", g.handleSystem())
		r.Get("/system/usage", g.handleSystemUsage())
		r.Get("/metrics", g.handleMetrics())
		r.Get("/transcript", g.handleTranscript())
	})

	return r
}
