package routes

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/chess-tournament/handlers"
	"github.com/Dosada05/chess-tournament/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Tournament   *handlers.TournamentHandler
	Registration *handlers.RegistrationHandler
	Match        *handlers.MatchHandler
	Standings    *handlers.StandingsHandler
	Player       *handlers.PlayerHandler
	Snapshot     *handlers.SnapshotHandler
	WebSocket    *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, h Handlers, auth *middleware.Authenticator, writeLimiter *middleware.RateLimiter, allowedOrigins []string, logger *slog.Logger) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", h.Snapshot.Health)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Route("/api", func(r chi.Router) {
		// Публичные маршруты
		r.Get("/snapshot", h.Snapshot.Snapshot)
		r.Get("/players", h.Player.SearchHandler)
		r.Get("/players/{playerID}", h.Player.GetByIDHandler)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListHandler)
			r.Get("/active", h.Tournament.ActiveHandler)

			r.With(auth.Authenticate, middleware.RequireAdmin).Post("/", h.Tournament.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetByIDHandler)
				r.Get("/players", h.Registration.ListPlayersHandler)
				r.Get("/matches", h.Match.ListByTournamentHandler)
				r.Get("/standings", h.Standings.GetHandler)

				r.Group(func(r chi.Router) {
					r.Use(auth.Authenticate)
					r.Use(writeLimiter.Limit)
					r.Post("/registrations", h.Registration.RegisterHandler)
					r.Delete("/registrations/me", h.Registration.UnregisterSelfHandler)
				})

				// Только для администраторов
				r.Group(func(r chi.Router) {
					r.Use(auth.Authenticate)
					r.Use(middleware.RequireAdmin)
					r.Patch("/", h.Tournament.UpdateHandler)
					r.Delete("/", h.Tournament.DeleteHandler)
					r.Post("/activate", h.Tournament.ActivateHandler)
					r.Post("/regenerate", h.Tournament.RegenerateHandler)
					r.Delete("/registrations/{playerID}", h.Registration.RemovePlayerHandler)
					r.Post("/standings/export", h.Standings.ExportHandler)
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Get("/me", h.Player.MeHandler)
			r.With(writeLimiter.Limit).Put("/me", h.Player.UpdateMeHandler)
			r.With(writeLimiter.Limit).Put("/matches/{matchID}/result", h.Match.SubmitResultHandler)
		})
	})
}
