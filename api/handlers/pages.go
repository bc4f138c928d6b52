package handlers

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"incidents-dashboard/core/aggregate"
	"incidents-dashboard/core/notify"
	"incidents-dashboard/core/present"
	"incidents-dashboard/core/shell"
	"incidents-dashboard/core/utils"
)

type PagesHandler struct {
	tmpl   *template.Template
	logger *utils.Logger
}

func NewPagesHandler(tmpl *template.Template, logger *utils.Logger) *PagesHandler {
	return &PagesHandler{tmpl: tmpl, logger: logger}
}

type chartView struct {
	Slot    present.Slot
	Title   string
	Version uint64
	SVG     template.HTML
}

type column struct {
	Key    aggregate.SortKey
	Label  string
	Active bool
	Order  aggregate.SortOrder
}

type pageData struct {
	Lang          string
	Title         string
	CSRF          string
	User          userPayload
	View          shell.View
	Notifications []notify.Notification
	Dashboard     present.Dashboard
	Charts        []chartView
	Rows          []present.Row
	Columns       []column
}

var tableColumns = []struct {
	key   aggregate.SortKey
	label string
}{
	{aggregate.SortCreatedAt, "Fecha"},
	{aggregate.SortAgent, "Agente"},
	{aggregate.SortPoint, "Punto"},
	{aggregate.SortNote, "Observación"},
}

func (h *PagesHandler) base(sh *shell.Shell, title string) pageData {
	d := pageData{
		Lang:  sh.Lang(),
		Title: title,
		View:  sh.View(),
	}
	if sess := sh.Gate.Current(); sess != nil {
		d.CSRF = sess.CSRFToken
		d.User = userFrom(sess)
	}
	return d
}

func (h *PagesHandler) Root(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	if sh.SignedIn() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Login sends signed-in devices straight to the dashboard.
func (h *PagesHandler) Login(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	if sh.SignedIn() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	d := h.base(sh, "Iniciar sesión")
	d.Notifications = sh.Notices.Active(time.Now())
	h.render(w, "login.html", d)
}

func (h *PagesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	sh.SetTab(shell.TabDashboard)
	dash, err := sh.Dashboard(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	d := h.base(sh, "Dashboard de Incidencias")
	d.Dashboard = dash
	for _, c := range dash.Charts {
		cv := chartView{Slot: c.Slot, Title: c.Title, Version: c.Version}
		if m := sh.Board.Mounted(c.Slot); m != nil {
			if svg, ok := m.Output.(template.HTML); ok {
				cv.SVG = svg
				cv.Version = m.Version
			}
		}
		d.Charts = append(d.Charts, cv)
	}
	d.Notifications = sh.Notices.Active(time.Now())
	h.render(w, "dashboard.html", d)
}

func (h *PagesHandler) Table(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	sh.SetTab(shell.TabTable)
	rows, view, err := sh.Table(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	d := h.base(sh, "Incidencias")
	d.View = view
	d.Rows = rows
	for _, c := range tableColumns {
		d.Columns = append(d.Columns, column{
			Key:    c.key,
			Label:  c.label,
			Active: view.Sort.Key == c.key,
			Order:  view.Sort.Order,
		})
	}
	d.Notifications = sh.Notices.Active(time.Now())
	h.render(w, "table.html", d)
}

func (h *PagesHandler) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Errorf("render %s: %v", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
