package server

import (
	"net/http"

	"github.com/sw33tLie/roomdesk/internal/utils"
	"github.com/sw33tLie/roomdesk/pkg/dashboard"
)

type Server struct {
	Svc          *dashboard.Service
	Username     string
	Password     string
	PollInterval int // seconds, reported to clients by /api/dashboard/init
}

func New(svc *dashboard.Service, user, pass string, pollInterval int) *Server {
	return &Server{
		Svc:          svc,
		Username:     user,
		Password:     pass,
		PollInterval: pollInterval,
	}
}

// Handler returns the full route table wrapped in CORS and debug logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Server is running"))
	})
	mux.HandleFunc("GET /api/dashboard/init", s.basicAuth(s.handleDashboardInit))
	mux.HandleFunc("POST /api/rooms/{room_id}/enter", s.basicAuth(s.handleEnterRoom))
	mux.HandleFunc("PUT /api/records/{row_ref}/user-input", s.basicAuth(s.handleUpdateRecord))
	mux.HandleFunc("GET /api/records", s.basicAuth(s.handleRecords))
	mux.HandleFunc("GET /api/report", s.basicAuth(s.handleReport))

	return withDebugLog(withCORS(mux))
}

func (s *Server) Start(addr string) error {
	utils.Log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withDebugLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.Log.Debugf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
