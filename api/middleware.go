package api

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"incidents-dashboard/api/handlers"
	"incidents-dashboard/config"
	"incidents-dashboard/core/access"
	"incidents-dashboard/core/auth"
	"incidents-dashboard/core/notify"
	"incidents-dashboard/core/shell"
	"incidents-dashboard/core/utils"
)

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Errorf("PANIC %s %s: %v\n%s", r.Method, r.URL.Path, rec, string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

const (
	deviceCookieTTL             = 30 * 24 * time.Hour
	sessionActivityInterval     = 30 * time.Second
	loginPayloadMaxBytes        = 64 * 1024
	loginLimiterTTL             = 10 * time.Minute
	loginLimiterCleanupInterval = time.Minute
	loginLimiterMaxBuckets      = 10000
)

type requestLimiter struct {
	mu              sync.Mutex
	buckets         map[string]*tokenBucket
	capacity        int
	refill          time.Duration
	ttl             time.Duration
	cleanupInterval time.Duration
	lastCleanup     time.Time
	maxBuckets      int
	now             func() time.Time
}

type tokenBucket struct {
	tokens   int
	last     time.Time
	lastSeen time.Time
}

func newLimiter(capacity int, refill time.Duration) *requestLimiter {
	return &requestLimiter{
		buckets:         make(map[string]*tokenBucket),
		capacity:        capacity,
		refill:          refill,
		ttl:             loginLimiterTTL,
		cleanupInterval: loginLimiterCleanupInterval,
		maxBuckets:      loginLimiterMaxBuckets,
		now:             time.Now,
	}
}

func (l *requestLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if l.cleanupInterval > 0 && now.Sub(l.lastCleanup) >= l.cleanupInterval {
		l.cleanup(now)
		l.lastCleanup = now
	}
	tb, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &tokenBucket{tokens: l.capacity - 1, last: now, lastSeen: now}
		return true
	}
	tb.lastSeen = now
	if now.Sub(tb.last) >= l.refill {
		tb.tokens = l.capacity
		tb.last = now
	}
	if tb.tokens <= 0 {
		return false
	}
	tb.tokens--
	return true
}

func (l *requestLimiter) cleanup(now time.Time) {
	if l.ttl > 0 {
		for key, tb := range l.buckets {
			if now.Sub(tb.lastSeen) > l.ttl {
				delete(l.buckets, key)
			}
		}
	}
	for l.maxBuckets > 0 && len(l.buckets) > l.maxBuckets {
		oldestKey := ""
		var oldest time.Time
		for key, tb := range l.buckets {
			if oldestKey == "" || tb.lastSeen.Before(oldest) {
				oldestKey = key
				oldest = tb.lastSeen
			}
		}
		if oldestKey == "" {
			break
		}
		delete(l.buckets, oldestKey)
	}
}

type sessionActivity struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func (sa *sessionActivity) shouldUpdate(id string, now time.Time, interval time.Duration) bool {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	if sa.last == nil {
		sa.last = map[string]time.Time{}
	}
	last, ok := sa.last[id]
	if !ok || now.Sub(last) >= interval {
		sa.last[id] = now
		return true
	}
	return false
}

func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self'; style-src-attr 'unsafe-inline'; script-src 'self'; img-src 'self' data: https:; object-src 'none'; frame-ancestors 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("Referrer-Policy", "no-referrer")
		if isHTTPSRequest(r, s.cfg) {
			w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		user := "-"
		if sh := rec.sh; sh != nil {
			if sess := sh.Gate.Current(); sess != nil {
				user = sess.UID
			}
		}
		s.logger.Printf("RESP %s %s user=%s status=%d dur=%s bytes=%d", r.Method, r.URL.Path, user, rec.status, time.Since(start), rec.size)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
	// sh is set by the device middleware so the access log can name the user.
	sh *shell.Shell
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// deviceMiddleware attaches the device shell, creating one for new browsers
// and restoring a persisted session after a restart.
func (s *Server) deviceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var deviceID string
		if c, err := r.Cookie(handlers.DeviceCookieName); err == nil {
			deviceID = c.Value
		}
		sh, created := s.shells.GetOrCreate(deviceID)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     handlers.DeviceCookieName,
				Value:    sh.DeviceID,
				Path:     "/",
				HttpOnly: true,
				Secure:   isHTTPSRequest(r, s.cfg),
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(deviceCookieTTL / time.Second),
			})
			if h := r.Header.Get("Accept-Language"); h != "" {
				sh.SetLang(auth.PreferredLang(h))
			} else if s.cfg != nil && s.cfg.UI.Lang != "" {
				sh.SetLang(s.cfg.UI.Lang)
			}
		}
		now := time.Now()
		sh.Touch(now)
		if sh.SignedIn() {
			if sh.Expire(r.Context(), now) {
				s.logger.Printf("session expired device=%s", sh.DeviceID)
			} else if s.activity.shouldUpdate(sh.DeviceID, now, sessionActivityInterval) {
				sh.Gate.Touch(r.Context())
			}
		} else if c, err := r.Cookie(handlers.SessionCookieName); err == nil && c.Value != "" {
			if _, err := sh.Gate.Restore(r.Context(), c.Value); err != nil {
				s.logger.Errorf("restore session device=%s: %v", sh.DeviceID, err)
			}
		}
		if rec, ok := w.(*statusRecorder); ok {
			rec.sh = sh
		}
		next.ServeHTTP(w, r.WithContext(handlers.WithShell(r.Context(), sh)))
	})
}

// accessMiddleware applies the route policy for the device's subject.
func (s *Server) accessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sh := handlers.ShellFrom(r.Context())
		signedIn := sh != nil && sh.SignedIn()
		if s.access.Allowed(access.SubjectFor(signedIn), r.URL.Path, r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		if !signedIn {
			s.logger.Printf("AUTH fail (signed out) %s %s", r.Method, r.URL.Path)
			s.respondUnauthorized(w, r)
			return
		}
		http.Error(w, "forbidden", http.StatusForbidden)
	})
}

// requireSession rejects signed-out devices and enforces the CSRF token on
// state-changing methods.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh := handlers.ShellFrom(r.Context())
		var sess *auth.Session
		if sh != nil {
			sess = sh.Gate.Current()
		}
		if sess == nil {
			s.respondUnauthorized(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodOptions {
			header := r.Header.Get("X-CSRF-Token")
			if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(sess.CSRFToken)) != 1 {
				s.logger.Printf("AUTH fail (csrf) %s %s uid=%s", r.Method, r.URL.Path, sess.UID)
				http.Error(w, "csrf invalid", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	}
}

func (s *Server) respondUnauthorized(w http.ResponseWriter, r *http.Request) {
	if shouldRedirectToLogin(r) {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"error": map[string]string{"code": "auth.required", "message": "unauthorized"},
	})
}

func shouldRedirectToLogin(r *http.Request) bool {
	if r == nil || r.URL == nil || r.Method != http.MethodGet {
		return false
	}
	path := strings.TrimSpace(r.URL.Path)
	if path == "" {
		return false
	}
	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/static/") {
		return false
	}
	accept := strings.ToLower(strings.TrimSpace(r.Header.Get("Accept")))
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}

// rateLimitMiddleware throttles sign-in attempts per client ip and per email.
// A throttled attempt surfaces as a RateLimited auth failure.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := s.clientIP(r)
		r.Body = http.MaxBytesReader(w, r.Body, loginPayloadMaxBytes+1)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var cred handlers.Credentials
		_ = json.Unmarshal(body, &cred)
		email := utils.NormalizeEmail(cred.Email)
		allowed := s.limiter.allow(strings.ToLower(ip))
		if allowed && email != "" {
			allowed = s.limiter.allow("user|" + email)
		}
		if !allowed {
			lang := "es"
			sh := handlers.ShellFrom(r.Context())
			if sh != nil {
				lang = sh.Lang()
			}
			msg := auth.Message(lang, auth.RateLimited)
			if sh != nil {
				sh.Notices.Push(notify.Error, msg)
			}
			s.logger.Printf("AUTH throttled ip=%s", ip)
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error": map[string]string{"code": "auth." + string(auth.RateLimited), "message": msg},
			})
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (s *Server) clientIP(r *http.Request) string {
	ip, _, _ := net.SplitHostPort(r.RemoteAddr)
	if ip == "" {
		ip = r.RemoteAddr
	}
	ip = strings.TrimSpace(ip)
	if s == nil || s.cfg == nil || !isTrustedProxy(ip, s.cfg.Security.TrustedProxies) {
		return ip
	}
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		if candidate := extractClientIPFromXFF(xff, s.cfg.Security.TrustedProxies); candidate != "" {
			return candidate
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		if parsed := net.ParseIP(realIP); parsed != nil {
			return parsed.String()
		}
	}
	return ip
}

func isHTTPSRequest(r *http.Request, cfg *config.AppConfig) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	if cfg == nil {
		return false
	}
	if cfg.TLSEnabled {
		return true
	}
	remoteIP, _, _ := net.SplitHostPort(r.RemoteAddr)
	if remoteIP == "" {
		remoteIP = strings.TrimSpace(r.RemoteAddr)
	}
	if !isTrustedProxy(strings.TrimSpace(remoteIP), cfg.Security.TrustedProxies) {
		return false
	}
	proto := strings.ToLower(strings.TrimSpace(strings.SplitN(r.Header.Get("X-Forwarded-Proto"), ",", 2)[0]))
	return proto == "https"
}

func extractClientIPFromXFF(xff string, trusted []string) string {
	parts := strings.Split(xff, ",")
	for i := len(parts) - 1; i >= 0; i-- {
		parsed := net.ParseIP(strings.TrimSpace(parts[i]))
		if parsed == nil {
			continue
		}
		val := parsed.String()
		if !isTrustedProxy(val, trusted) {
			return val
		}
	}
	return ""
}

func isTrustedProxy(ip string, trusted []string) bool {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return false
	}
	for _, raw := range trusted {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		if strings.Contains(val, "/") {
			if _, block, err := net.ParseCIDR(val); err == nil && block.Contains(parsed) {
				return true
			}
			continue
		}
		if parsed.Equal(net.ParseIP(val)) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
