package httpapi

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/netx"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const unmatchedRoute = "unmatched"

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// observe assigns the request ID, then writes one audit line and one metric
// sample per request once the handler chain returns.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(common.RequestIDHeaderName)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, requestID)

		info := &requestInfo{RequestID: requestID}
		r = r.WithContext(context.WithValue(r.Context(), ctxKeyRequest, info))

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		route := info.Route
		if route == "" {
			route = unmatchedRoute
		}
		duration := time.Since(start)

		s.metrics.recordRequest(r.Method, route, status, duration)
		s.logger.Info(r.Context(), "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", status,
			"bytes", rec.bytes,
			"duration_ms", duration.Milliseconds(),
			"request_id", requestID,
			"user_id", info.UserID,
		)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.requestLogger(r).Error(r.Context(), "panic recovered", "panic", v, "stack", string(debug.Stack()))
				writeError(w, msgInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// tagRoute records the matched route template for the audit line and metrics.
func (s *Server) tagRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				requestInfoFrom(r.Context()).Route = tpl
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := netx.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			s.requestLogger(r).Debug(ctx, "rejecting request", "reason", err.Error())
			writeFail(w, http.StatusUnauthorized, msgUnauthorized, msgUnauthenticated)
			return
		}

		user, claims, err := s.users.Authorize(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				s.requestLogger(r).Debug(ctx, "rejecting request", "reason", err.Error())
				writeFail(w, http.StatusUnauthorized, msgUnauthorized, msgUnauthenticated)
				return
			}
			s.requestLogger(r).Error(ctx, "authorization failed", "error", err)
			writeError(w, msgInternal)
			return
		}

		requestInfoFrom(ctx).UserID = user.ID
		ctx = context.WithValue(ctx, ctxKeyAuth, authInfo{User: user, Claims: claims})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireReport(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, _ := authFrom(r.Context())
		if !s.report.Allows(a.User) {
			s.requestLogger(r).Warn(r.Context(), "report access denied")
			writeFail(w, http.StatusForbidden, msgForbidden, msgReportForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger returns a logger tagged with the request and caller IDs.
func (s *Server) requestLogger(r *http.Request) logging.Logger {
	info := requestInfoFrom(r.Context())
	l := s.logger.With("request_id", info.RequestID)
	if info.UserID != "" {
		l = l.With("user_id", info.UserID)
	}
	return l
}
