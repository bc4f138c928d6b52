package routegroups

import (
	"github.com/go-chi/chi/v5"

	"incidents-dashboard/api/handlers"
)

func RegisterIncidents(apiRouter chi.Router, g Guards, incidents *handlers.IncidentsHandler, view *handlers.ViewHandler) {
	apiRouter.MethodFunc("GET", "/dashboard", g.Session(incidents.Dashboard))
	apiRouter.MethodFunc("POST", "/incidents/refresh", g.Session(incidents.Refresh))
	apiRouter.MethodFunc("GET", "/incidents/{id}/evidence", g.Session(incidents.Evidence))

	apiRouter.Route("/table", func(tableRouter chi.Router) {
		tableRouter.MethodFunc("GET", "/", g.Session(incidents.Table))
		tableRouter.MethodFunc("PUT", "/search", g.Session(incidents.Search))
		tableRouter.MethodFunc("POST", "/sort/{key}", g.Session(incidents.Sort))
	})

	apiRouter.Route("/view", func(viewRouter chi.Router) {
		viewRouter.MethodFunc("PUT", "/tab", g.Session(view.SetTab))
		viewRouter.MethodFunc("PUT", "/kpi", g.Session(view.SetKPI))
		viewRouter.MethodFunc("POST", "/modal/{id}", g.Session(view.OpenModal))
		viewRouter.MethodFunc("DELETE", "/modal", g.Session(view.CloseModal))
	})
}
