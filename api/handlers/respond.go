package handlers

import (
	"encoding/json"
	"net/http"

	"incidents-dashboard/core/auth"
	"incidents-dashboard/core/notify"
)

const maxJSONBody = 64 * 1024

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "request.invalid", "bad request")
		return false
	}
	return true
}

func preferredLang(r *http.Request) string {
	if sh := ShellFrom(r.Context()); sh != nil {
		return sh.Lang()
	}
	return auth.PreferredLang(r.Header.Get("Accept-Language"))
}

type notificationsPayload struct {
	Notifications []notify.Notification `json:"notifications"`
}
