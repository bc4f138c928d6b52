package routegroups

import (
	"github.com/go-chi/chi/v5"

	"incidents-dashboard/api/handlers"
)

func RegisterAuth(apiRouter chi.Router, g Guards, auth *handlers.AuthHandler) {
	apiRouter.Route("/auth", func(authRouter chi.Router) {
		authRouter.MethodFunc("POST", "/login", g.Login(auth.Login))
		authRouter.MethodFunc("POST", "/logout", g.Session(auth.Logout))
		authRouter.MethodFunc("GET", "/me", g.Device(auth.Me))
	})
}

func RegisterNotifications(apiRouter chi.Router, g Guards, notifications *handlers.NotificationsHandler) {
	apiRouter.Route("/notifications", func(notificationsRouter chi.Router) {
		notificationsRouter.MethodFunc("GET", "/", g.Device(notifications.List))
		notificationsRouter.MethodFunc("DELETE", "/{id}", g.Device(notifications.Dismiss))
	})
}
