package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"incidents-dashboard/core/aggregate"
	"incidents-dashboard/core/present"
	"incidents-dashboard/core/shell"
	"incidents-dashboard/core/utils"
)

type IncidentsHandler struct {
	logger *utils.Logger
}

func NewIncidentsHandler(logger *utils.Logger) *IncidentsHandler {
	return &IncidentsHandler{logger: logger}
}

type loadStatus struct {
	State    string     `json:"state"`
	Count    int        `json:"count"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func statusOf(snap shell.Snapshot) loadStatus {
	st := loadStatus{State: snap.State.String(), Count: len(snap.Items)}
	if !snap.LoadedAt.IsZero() {
		t := snap.LoadedAt
		st.LoadedAt = &t
	}
	if snap.Err != nil {
		st.Error = snap.Err.Error()
	}
	return st
}

// writeShellError maps shell errors to responses.
func writeShellError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shell.ErrSignedOut):
		writeError(w, http.StatusUnauthorized, "auth.signed_out", "unauthorized")
	case errors.Is(err, shell.ErrNoIncident):
		writeError(w, http.StatusNotFound, "incident.not_found", "not found")
	case errors.Is(err, shell.ErrNoEvidence):
		writeError(w, http.StatusNotFound, "incident.no_evidence", "no evidence")
	default:
		writeError(w, http.StatusInternalServerError, "server.error", "server error")
	}
}

func (h *IncidentsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	dash, err := sh.Dashboard(r.Context())
	if err != nil {
		writeShellError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dashboard": dash,
		"view":      sh.View(),
		"load":      statusOf(sh.Workspace.Snapshot()),
	})
}

func (h *IncidentsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	snap, err := sh.Refresh(r.Context())
	if err != nil {
		writeShellError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"load": statusOf(snap)})
}

func (h *IncidentsHandler) Table(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	rows, view, err := sh.Table(r.Context())
	if err != nil {
		writeShellError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows, "view": view, "count": len(rows)})
}

type searchRequest struct {
	Term string `json:"term"`
}

func (h *IncidentsHandler) Search(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": sh.SetSearch(req.Term)})
}

func (h *IncidentsHandler) Sort(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	key, err := aggregate.ParseSortKey(urlParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "table.sort_key", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": sh.ToggleSort(key)})
}

// Evidence serves inline data urls as bytes and redirects remote references.
func (h *IncidentsHandler) Evidence(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	ref, err := sh.Evidence(urlParam(r, "id"))
	if err != nil {
		writeShellError(w, err)
		return
	}
	if present.IsRemoteURL(ref) {
		http.Redirect(w, r, ref, http.StatusFound)
		return
	}
	mediaType, data, err := present.DecodeDataURL(ref)
	if err != nil {
		h.logger.Warnf("evidence decode id=%s: %v", urlParam(r, "id"), err)
		writeError(w, http.StatusUnprocessableEntity, "incident.evidence_invalid", "invalid evidence")
		return
	}
	if !present.ServableImage(mediaType) {
		writeError(w, http.StatusUnsupportedMediaType, "incident.evidence_type", "unsupported evidence type")
		return
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
