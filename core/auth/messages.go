package auth

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	MsgWelcome        = "welcome"
	MsgSignedOut      = "signed_out"
	MsgSignOutFailed  = "sign_out_failed"
	MsgMissingFields  = "missing_fields"
	MsgLoaded         = "incidents_loaded"
	MsgLoadFailed     = "incidents_load_failed"
	MsgInvalidEmail   = "invalid_email"
	MsgSessionExpired = "session_expired"
)

var messages = map[string]map[string]string{
	"es": {
		string(UserNotFound):       "Usuario no encontrado",
		string(InvalidCredentials): "Contraseña incorrecta",
		string(AccountDisabled):    "Usuario deshabilitado",
		string(RateLimited):        "Demasiados intentos. Intenta más tarde",
		string(Unknown):            "Error de autenticación",
		MsgInvalidEmail:            "Email inválido",
		MsgWelcome:                 "¡Bienvenido! Iniciando sesión...",
		MsgSignedOut:               "Sesión cerrada correctamente",
		MsgSignOutFailed:           "Error al cerrar sesión",
		MsgMissingFields:           "Por favor completa todos los campos",
		MsgLoaded:                  "%d incidencias cargadas",
		MsgLoadFailed:              "Error al cargar incidencias",
		MsgSessionExpired:          "La sesión ha expirado",
	},
	"en": {
		string(UserNotFound):       "User not found",
		string(InvalidCredentials): "Wrong password",
		string(AccountDisabled):    "User disabled",
		string(RateLimited):        "Too many attempts. Try again later",
		string(Unknown):            "Authentication error",
		MsgInvalidEmail:            "Invalid email",
		MsgWelcome:                 "Welcome! Signing in...",
		MsgSignedOut:               "Signed out",
		MsgSignOutFailed:           "Sign-out failed",
		MsgMissingFields:           "Please fill in all fields",
		MsgLoaded:                  "%d incidents loaded",
		MsgLoadFailed:              "Failed to load incidents",
		MsgSessionExpired:          "Session expired",
	},
}

// Localized falls back to Spanish, then to the key itself.
func Localized(lang, key string) string {
	if m, ok := messages[normalizeLang(lang)]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := messages["es"][key]; ok {
		return v
	}
	return key
}

// Message is the user-facing text for a sign-in failure.
func Message(lang string, kind ErrorKind) string {
	return Localized(lang, string(kind))
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if strings.HasPrefix(lang, "en") {
		return "en"
	}
	return "es"
}

var langMatcher = language.NewMatcher([]language.Tag{language.Spanish, language.English})

// PreferredLang picks "en" or "es" from an Accept-Language header, honouring
// q-values. Anything unparseable or unsupported falls back to "es".
func PreferredLang(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return "es"
	}
	_, idx, conf := langMatcher.Match(tags...)
	if conf == language.No || idx != 1 {
		return "es"
	}
	return "en"
}
