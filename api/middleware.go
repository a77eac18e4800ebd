package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"gateway/logging"
	"gateway/vacuum"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

func (s *Server) logger(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context())
}

// requestID tags the request and its logger with an id, reusing the one sent by the client
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)

		log := s.log.With("request_id", id, "method", r.Method, "path", r.URL.Path)
		ctx := logging.WithLogger(r.Context(), log)

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log := s.logger(r)
				log.Error("Recovered from panic", "error", err)
				writeEnvelope(w, log, vacuum.InternalError(fmt.Sprint(err)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// cors allows the dashboard, which is served from another origin, to call the api
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := s.config.AllowedOrigin
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
