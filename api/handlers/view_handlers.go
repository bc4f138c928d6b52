package handlers

import (
	"net/http"

	"incidents-dashboard/core/shell"
)

type ViewHandler struct{}

func NewViewHandler() *ViewHandler {
	return &ViewHandler{}
}

func (h *ViewHandler) SetTab(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	var req struct {
		Tab string `json:"tab"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	tab, err := shell.ParseTab(req.Tab)
	if err != nil {
		writeError(w, http.StatusBadRequest, "view.tab", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": sh.SetTab(tab), "redirect": "/" + string(tab)})
}

func (h *ViewHandler) SetKPI(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	var req struct {
		KPI string `json:"kpi"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	pane, err := shell.ParseKPIPane(req.KPI)
	if err != nil {
		writeError(w, http.StatusBadRequest, "view.kpi", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": sh.SetKPI(pane)})
}

func (h *ViewHandler) OpenModal(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	view, err := sh.OpenImage(urlParam(r, "id"))
	if err != nil {
		writeShellError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": view})
}

// CloseModal serves both the close button and overlay clicks.
func (h *ViewHandler) CloseModal(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": sh.CloseImage()})
}
