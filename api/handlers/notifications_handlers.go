package handlers

import (
	"net/http"
	"time"
)

type NotificationsHandler struct{}

func NewNotificationsHandler() *NotificationsHandler {
	return &NotificationsHandler{}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	writeJSON(w, http.StatusOK, notificationsPayload{Notifications: sh.Notices.Active(time.Now())})
}

func (h *NotificationsHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	if !sh.Notices.Dismiss(urlParam(r, "id")) {
		writeError(w, http.StatusNotFound, "notification.not_found", "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
