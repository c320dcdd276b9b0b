package httpserver

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"hotel_booking/internal/adapters/auth"
	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

// ---- status-recording ResponseWriter ----

type srw struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *srw) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *srw) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *srw) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// ---- Metrics middleware ----

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &srw{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		observability.ObserveHTTP(routeOf(r), r.Method, sw.Status(), time.Since(start))
	})
}

// ---- Structured logging middleware ----

func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &srw{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			ev := l.Info().
				Str("route", routeOf(r)).
				Str("method", r.Method).
				Int("status", sw.Status()).
				Dur("duration", time.Since(start)).
				Str("remote", remoteIP(r)).
				Str("ua", r.UserAgent()).
				Str("request_id", chimw.GetReqID(r.Context()))
			if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
				ev = ev.Str("trace_id", sc.TraceID().String())
			}
			ev.Msg("http_request")
		})
	}
}

// Picks first X-Forwarded-For IP, else X-Real-IP, else RemoteAddr host.
func remoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// ---- Authentication ----

type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

type UserResolver interface {
	Resolve(ctx context.Context, p app.Profile) (domain.User, error)
}

// Authenticate attaches the caller's identity when a valid bearer token is
// present. Requests without one continue anonymously; gated routes reject
// them in RequireRoles.
func Authenticate(v TokenVerifier, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil || v == nil {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := v.Verify(tok)
			if err != nil {
				log.Debug().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("rejected bearer token")
				next.ServeHTTP(w, r)
				return
			}
			u, err := users.Resolve(r.Context(), claims.Profile())
			if err != nil {
				writeError(w, r, err)
				return
			}
			id := domain.Identity{UserID: u.ID, Role: u.Role}
			if u.Email != nil {
				id.Email = *u.Email
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRoles answers 403 unless the caller is authenticated and holds one
// of roles (any role when none are given).
func RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := auth.Allow(auth.FromContext(r.Context()), roles...); err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ---- Idempotency-Key ----

const IdempotencyHeader = "Idempotency-Key"

// recorder tees the response so it can be stored for replays.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *recorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a completed request carrying
// the same Idempotency-Key from the same caller. Only 2xx responses are
// kept; anything else releases the key.
func Idempotency(store domain.IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			scope := "anon"
			if id := auth.FromContext(r.Context()); id != nil {
				scope = id.UserID
			}
			key = scope + ":" + r.Method + ":" + r.URL.Path + ":" + key

			stored, err := store.Reserve(r.Context(), key)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if stored != nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			rec := &recorder{ResponseWriter: w}
			completed := false
			// release on panic too, so the client can retry
			defer func() {
				if completed {
					return
				}
				if err := store.Release(context.WithoutCancel(r.Context()), key); err != nil {
					log.Error().Err(err).Msg("release idempotency key")
				}
			}()
			next.ServeHTTP(rec, r)

			if rec.status >= 200 && rec.status < 300 {
				resp := domain.StoredResponse{Status: rec.status, Body: rec.body.Bytes()}
				if err := store.Complete(context.WithoutCancel(r.Context()), key, resp); err != nil {
					log.Error().Err(err).Msg("store idempotent response")
					return
				}
				completed = true
			}
		})
	}
}
