package handlers

import (
	"errors"
	"net/http"
	"time"

	"incidents-dashboard/config"
	"incidents-dashboard/core/auth"
	"incidents-dashboard/core/utils"
)

type AuthHandler struct {
	cfg    *config.AppConfig
	logger *utils.Logger
}

func NewAuthHandler(cfg *config.AppConfig, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, logger: logger}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func userFrom(sess *auth.Session) userPayload {
	return userPayload{UID: sess.UID, Email: sess.Email, DisplayName: sess.DisplayName, ExpiresAt: sess.ExpiresAt}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	lang := preferredLang(r)
	var cred Credentials
	if !decodeJSON(w, r, &cred) {
		return
	}
	sess, err := sh.SignIn(r.Context(), cred.Email, cred.Password)
	if err != nil {
		if errors.Is(err, auth.ErrMissingFields) {
			writeError(w, http.StatusBadRequest, "auth.missing_fields", auth.Localized(lang, auth.MsgMissingFields))
			return
		}
		kind := auth.KindOf(err)
		status := http.StatusUnauthorized
		switch kind {
		case auth.AccountDisabled:
			status = http.StatusForbidden
		case auth.RateLimited:
			status = http.StatusTooManyRequests
		case auth.Unknown:
			status = http.StatusBadGateway
			h.logger.Errorf("auth login failed device=%s: %v", sh.DeviceID, err)
		}
		writeError(w, status, "auth."+string(kind), auth.Describe(lang, err))
		return
	}
	h.setSessionCookies(w, r, sess)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":     userFrom(sess),
		"redirect": "/dashboard",
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	lang := preferredLang(r)
	if err := sh.SignOut(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "auth.sign_out_failed", auth.Localized(lang, auth.MsgSignOutFailed))
		return
	}
	h.clearSessionCookies(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"redirect": "/login"})
}

// Me reports the current session; anonymous devices get signed_in=false.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sh := requireShell(w, r)
	if sh == nil {
		return
	}
	sess := sh.Gate.Current()
	if sess == nil {
		writeJSON(w, http.StatusOK, map[string]any{"signed_in": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"signed_in": true, "user": userFrom(sess)})
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	secure := isSecureRequest(r, h.cfg)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    sess.CSRFToken,
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter, r *http.Request) {
	secure := isSecureRequest(r, h.cfg)
	for _, name := range []string{SessionCookieName, CSRFCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: name == SessionCookieName,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

func isSecureRequest(r *http.Request, cfg *config.AppConfig) bool {
	if r.TLS != nil {
		return true
	}
	return cfg != nil && (cfg.TLSEnabled || cfg.IsProduction())
}
