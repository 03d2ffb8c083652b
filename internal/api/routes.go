package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/users/{externalID}", func(r chi.Router) {
		r.Post("/", s.handleUpsertUser)

		r.Group(func(r chi.Router) {
			r.Use(s.userMiddleware)

			r.Get("/stats", s.handleStats)

			r.Get("/modules", s.handleListModules)
			r.Post("/modules", s.handleCreateModule)
			r.Get("/modules/{moduleID}", s.handleGetModule)
			r.Delete("/modules/{moduleID}", s.handleDeleteModule)
			r.Get("/modules/{moduleID}/cards", s.handleListCards)
			r.Post("/modules/{moduleID}/cards", s.handleAddCard)

			r.Get("/cards/{cardID}", s.handleGetCard)
			r.Put("/cards/{cardID}", s.handleUpdateCard)
			r.Delete("/cards/{cardID}", s.handleDeleteCard)

			r.Post("/sessions", s.handleStartSession)
			r.Get("/sessions/current", s.handleCurrentSession)
			r.Route("/sessions/{sessionID}/questions/{questionID}", func(r chi.Router) {
				r.Post("/choice", s.handleSubmitChoice)
				r.Post("/text", s.handleSubmitText)
				r.Post("/dont-know", s.handleSubmitDontKnow)
				r.Post("/difficulty", s.handleSubmitDifficulty)
			})
			r.Post("/messages", s.handleMessage)
		})
	})

	return r
}
