package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"gateway/vacuum"

	"github.com/gorilla/mux"
)

const DefaultPrefix = "/api/appdaemon"

type Config struct {
	Addr          string `yaml:"addr" envconfig:"HTTP_ADDR"`
	Prefix        string `yaml:"prefix" envconfig:"HTTP_PREFIX"`
	AllowedOrigin string `yaml:"allowed_origin" envconfig:"HTTP_ALLOWED_ORIGIN"`
}

// Gateway is the set of operations exposed over http
type Gateway interface {
	ListDevices(ctx context.Context) vacuum.Envelope
	GetRooms(ctx context.Context, vacuumID string) vacuum.Envelope
	GetStatus(ctx context.Context, vacuumID string) vacuum.Envelope
	StartCleaning(ctx context.Context, payload vacuum.Payload) vacuum.Envelope
}

type Server struct {
	config  Config
	gateway Gateway
	log     *slog.Logger
}

// maxBodySize limits request bodies, payloads are a handful of fields
const maxBodySize = 1 << 16

func NewRouter(config Config, gateway Gateway, log *slog.Logger) *mux.Router {
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}

	s := &Server{config: config, gateway: gateway, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	routes := r.PathPrefix(config.Prefix).Subrouter()
	routes.HandleFunc("/vacuum_info", s.vacuumInfo).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	routes.HandleFunc("/vacuum_rooms", s.vacuumRooms).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	routes.HandleFunc("/vacuum_start", s.vacuumStart).Methods(http.MethodPost, http.MethodOptions)
	routes.HandleFunc("/vacuum_status", s.vacuumStatus).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)

	r.Use(s.requestID, s.recovery)
	routes.Use(mux.CORSMethodMiddleware(routes), s.cors)

	log.Info("Registered endpoints")
	for _, name := range []string{"vacuum_info", "vacuum_rooms", "vacuum_start", "vacuum_status"} {
		log.Info("- " + config.Prefix + "/" + name)
	}

	return r
}

func writeEnvelope(w http.ResponseWriter, log *slog.Logger, env vacuum.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Status)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error("Error serializing", "error", err)
	}
}

// decodeBody returns the JSON object in the body, or nil if there is none
func decodeBody(r *http.Request) vacuum.Payload {
	if r.Body == nil {
		return nil
	}

	var payload vacuum.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil
	}

	return payload
}

// vacuumID reads vacuum_id from the query string, falling back to a JSON body
func vacuumID(r *http.Request) string {
	if id := r.URL.Query().Get("vacuum_id"); id != "" {
		return id
	}

	if r.Method == http.MethodPost {
		return decodeBody(r).String("vacuum_id")
	}

	return ""
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.logger(r), vacuum.Envelope{Status: http.StatusOK, Success: true})
}

func (s *Server) vacuumInfo(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.logger(r), s.gateway.ListDevices(r.Context()))
}

func (s *Server) vacuumRooms(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.logger(r), s.gateway.GetRooms(r.Context(), vacuumID(r)))
}

func (s *Server) vacuumStatus(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.logger(r), s.gateway.GetStatus(r.Context(), vacuumID(r)))
}

func (s *Server) vacuumStart(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.logger(r), s.gateway.StartCleaning(r.Context(), decodeBody(r)))
}
