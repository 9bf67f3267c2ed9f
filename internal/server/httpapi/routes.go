package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	s.setFallbacks(r)
	r.Use(s.tagRoute)

	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	api := r.PathPrefix(common.APIBasePath).Subrouter()
	s.setFallbacks(api)
	api.HandleFunc("/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/login", s.login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	s.setFallbacks(protected)
	protected.Use(s.requireAuth)
	protected.HandleFunc("/logout", s.logout).Methods(http.MethodPost)
	protected.HandleFunc("/tasks", s.listTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks", s.createTask).Methods(http.MethodPost)
	// must stay ahead of /tasks/{id}
	protected.Handle("/tasks/completedcount", s.requireReport(http.HandlerFunc(s.completedCount))).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id}", s.getTask).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id}", s.updateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id}", s.deleteTask).Methods(http.MethodDelete)

	return s.observe(s.recoverer(r))
}

// setFallbacks installs the 404 and 405 envelopes on r. Subrouters do not
// inherit them from their parent.
func (s *Server) setFallbacks(r *mux.Router) {
	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)
}

// notFound and methodNotAllowed may run behind tagRoute when a subrouter
// answers, so they clear the route to keep it reported as unmatched.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	requestInfoFrom(r.Context()).Route = ""
	writeFail(w, http.StatusNotFound, msgRouteNotFound, msgRouteNotFoundErr)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	requestInfoFrom(r.Context()).Route = ""
	writeFail(w, http.StatusMethodNotAllowed, msgMethodNotAllowed, nil)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.PingContext(r.Context()); err != nil {
			s.requestLogger(r).Error(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, Envelope{Status: statusError, Message: "unavailable", Error: msgInternal})
			return
		}
	}
	writeSuccess(w, http.StatusOK, "ok", nil)
}
