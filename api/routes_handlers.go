package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"incidents-dashboard/api/handlers"
	"incidents-dashboard/api/routegroups"
	"incidents-dashboard/gui"
)

type routeHandlers struct {
	auth          *handlers.AuthHandler
	incidents     *handlers.IncidentsHandler
	view          *handlers.ViewHandler
	notifications *handlers.NotificationsHandler
	pages         *handlers.PagesHandler
	health        *handlers.HealthHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		auth:          handlers.NewAuthHandler(s.cfg, s.logger),
		incidents:     handlers.NewIncidentsHandler(s.logger),
		view:          handlers.NewViewHandler(),
		notifications: handlers.NewNotificationsHandler(),
		pages:         handlers.NewPagesHandler(s.templates, s.logger),
		health:        handlers.NewHealthHandler(s.schema),
	}
}

func (s *Server) routes() chi.Router {
	h := s.newRouteHandlers()
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", h.health.Healthz)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(gui.StaticFS()))))

	r.Group(func(r chi.Router) {
		r.Use(s.deviceMiddleware)
		r.Use(s.accessMiddleware)

		r.Get("/", h.pages.Root)
		r.Get("/login", h.pages.Login)
		r.Get("/dashboard", h.pages.Dashboard)
		r.Get("/table", h.pages.Table)

		g := routegroups.Guards{
			Session: s.requireSession,
			Device:  passThrough,
			Login:   s.rateLimitMiddleware,
		}
		r.Route("/api", func(apiRouter chi.Router) {
			routegroups.RegisterAuth(apiRouter, g, h.auth)
			routegroups.RegisterNotifications(apiRouter, g, h.notifications)
			routegroups.RegisterIncidents(apiRouter, g, h.incidents, h.view)
		})
	})
	return r
}

func passThrough(next http.HandlerFunc) http.HandlerFunc {
	return next
}
