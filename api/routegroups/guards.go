package routegroups

import "net/http"

// Guards wraps handlers with the checks a route needs on top of the global
// device and access middleware.
type Guards struct {
	// Session requires a signed-in device and a valid CSRF token on writes.
	Session func(http.HandlerFunc) http.HandlerFunc
	// Device only requires the device shell; the access policy still applies.
	Device func(http.HandlerFunc) http.HandlerFunc
	// Login rate-limits credential submissions.
	Login func(http.HandlerFunc) http.HandlerFunc
}
