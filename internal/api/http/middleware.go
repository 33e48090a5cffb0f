package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"toolshed-backend/internal/config"
	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/security"
)

const requestIDHeader = "X-Request-ID"

type claimsKey struct{}

func contextWithClaims(ctx context.Context, claims *security.UserClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// claimsFromContext returns the caller's token claims, or nil on public routes.
func claimsFromContext(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsKey{}).(*security.UserClaims)
	return claims
}

func isStaff(claims *security.UserClaims) bool {
	return claims != nil && domain.UserRole(claims.Role).IsStaff()
}

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				serverErrorResponse(w, r, fmt.Errorf("panic: %v", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// requestLogger tags the request context with an id, echoed back in the
// X-Request-ID header, and logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		r = r.WithContext(logger.WithRequestID(r.Context(), requestID))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"latency", time.Since(start),
			"client_ip", clientIP(r),
		}
		switch {
		case rec.status >= http.StatusInternalServerError:
			logger.ErrorContext(r.Context(), "HTTP request", args...)
		case rec.status >= http.StatusBadRequest:
			logger.WarnContext(r.Context(), "HTTP request", args...)
		default:
			logger.InfoContext(r.Context(), "HTTP request", args...)
		}
	})
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP. Idle entries are evicted
// on the next request after the sweep interval.
type ipRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newIPRateLimiter(cfg config.RateLimitConfig) *ipRateLimiter {
	return &ipRateLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		idle:    3 * time.Minute,
		now:     time.Now,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > time.Minute {
		for key, c := range l.clients {
			if now.Sub(c.lastSeen) > l.idle {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	c, found := l.clients[ip]
	if !found {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			rateLimitExceededResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate enforces the security level registered for the matched route
// template and stores the access token claims in the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		template := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if t, err := route.GetPathTemplate(); err == nil {
				template = t
			}
		}
		level := config.GetSecurityLevel(r.Method + " " + template)

		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			unauthorizedResponse(w, r, "authorization token is not provided")
			return
		}

		claims, err := s.tokens.ValidateToken(token)
		if err != nil {
			unauthorizedResponse(w, r, err.Error())
			return
		}
		if claims.Type != security.TokenTypeAccess {
			unauthorizedResponse(w, r, security.ErrWrongTokenType.Error())
			return
		}
		if level == config.SecurityStaff && !isStaff(claims) {
			forbiddenResponse(w, r, "staff access required")
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
