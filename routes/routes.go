package routes

import (
	"net/http"

	"github.com/Dosada05/championship-system/handlers"
	"github.com/Dosada05/championship-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Championship *handlers.ChampionshipHandler
	Team         *handlers.TeamHandler
	Roster       *handlers.RosterHandler
	Schedule     *handlers.ScheduleHandler
	Match        *handlers.MatchHandler
	Public       *handlers.PublicHandler
	Site         *handlers.SiteHandler
	Sport        *handlers.SportHandler
	WebSocket    *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// Maintenance closes the public pages and the live feed; the dashboard stays up.
	Maintenance  bool
	LoginLimiter *middleware.IPRateLimiter
	Metrics      middleware.HTTPObserver
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	if opts.Metrics != nil {
		router.Use(middleware.Metrics(opts.Metrics))
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Site.Healthz)
	if opts.MetricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}
	router.Get("/openapi.json", handlers.OpenAPI)
	router.Get("/swagger/*", handlers.SwaggerUI("/openapi.json"))

	router.Route("/api", func(r chi.Router) {
		r.Get("/site", h.Site.Info)
		r.Get("/plans", h.Site.Plans)
		r.Get("/sports", h.Sport.Catalog)

		// Публичные маршруты аутентификации
		r.Group(func(r chi.Router) {
			if opts.LoginLimiter != nil {
				r.Use(middleware.RateLimit(opts.LoginLimiter))
			}
			r.Post("/auth/register", h.Auth.Register)
			r.Post("/auth/login", h.Auth.Login)
		})

		// Защищенные маршруты организатора
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))

			r.Get("/me", h.Auth.Me)
			r.Put("/me/plan", h.Auth.ChangePlan)

			r.Route("/championships", func(r chi.Router) {
				r.Get("/", h.Championship.List)
				r.Post("/", h.Championship.Create)

				r.Route("/{championshipID}", func(r chi.Router) {
					r.Get("/", h.Championship.Get)
					r.Put("/", h.Championship.Update)
					r.Delete("/", h.Championship.Delete)
					r.Patch("/status", h.Championship.UpdateStatus)
					r.Post("/logo", h.Championship.UploadLogo)
					r.Post("/cover", h.Championship.UploadCover)
					r.Get("/overview", h.Championship.Overview)

					r.Get("/teams", h.Team.List)
					r.Post("/teams", h.Team.Create)

					r.Post("/schedule/preview", h.Schedule.Preview)
					r.Post("/schedule", h.Schedule.Confirm)
					r.Get("/schedule.xlsx", h.Schedule.Export)

					r.Get("/matches", h.Match.List)
					r.Get("/standings", h.Match.Standings)
				})
			})

			r.Route("/teams/{teamID}", func(r chi.Router) {
				r.Get("/", h.Team.Get)
				r.Put("/", h.Team.Update)
				r.Delete("/", h.Team.Delete)
				r.Post("/logo", h.Team.UploadLogo)

				r.Get("/athletes", h.Roster.ListAthletes)
				r.Post("/athletes", h.Roster.CreateAthlete)
				r.Get("/sponsors", h.Roster.ListSponsors)
				r.Post("/sponsors", h.Roster.CreateSponsor)
			})

			r.Get("/athletes/{athleteID}", h.Roster.GetAthlete)
			r.Put("/athletes/{athleteID}", h.Roster.UpdateAthlete)
			r.Delete("/athletes/{athleteID}", h.Roster.DeleteAthlete)
			r.Delete("/sponsors/{sponsorID}", h.Roster.DeleteSponsor)

			r.Patch("/matches/{matchID}/result", h.Match.RecordResult)
			r.Patch("/matches/{matchID}/schedule", h.Match.Reschedule)
		})
	})

	// Публичные страницы чемпионата
	router.Group(func(r chi.Router) {
		r.Use(middleware.Maintenance(opts.Maintenance))

		r.Get("/public/championships", h.Public.Directory)
		r.Route("/public/championships/{championshipID}", func(r chi.Router) {
			r.Get("/", h.Public.Championship)
			r.Get("/standings", h.Public.Standings)
			r.Get("/standings.png", h.Public.StandingsChart)
		})
		r.Get("/ws/championships/{championshipID}", h.WebSocket.ServeWs)
	})
}
