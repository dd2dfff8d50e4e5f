package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"kinetic"
)

// statusServer exposes /healthz and /sessions/{peer}/status as JSON
// over a gorilla/mux router.
type statusServer struct {
	port       int
	version    string
	sessions   map[string]*kinetic.Session
	router     *mux.Router
	httpServer *http.Server
}

func newStatusServer(port int, sessions map[string]*kinetic.Session, version string) *statusServer {
	s := &statusServer{
		port:     port,
		version:  version,
		sessions: sessions,
		router:   mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *statusServer) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	s.router.HandleFunc("/sessions/{peer}/status", s.handleSessionStatus).Methods("GET")
}

type healthzResponse struct {
	Version string `json:"version"`
	Peers   int    `json:"peers"`
}

func (s *statusServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthzResponse{Version: s.version, Peers: len(s.sessions)})
}

type sessionStatus struct {
	Peer           string `json:"peer"`
	ConnectionID   int64  `json:"connectionId"`
	ClusterVersion int64  `json:"clusterVersion"`
	InFlight       int    `json:"inFlight"`
}

func (s *statusServer) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["peer"]
	sess, ok := s.sessions[name]
	if !ok {
		http.Error(w, "unknown peer", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessionStatus{
		Peer:           name,
		ConnectionID:   sess.ConnectionID(),
		ClusterVersion: sess.ClusterVersion(),
		InFlight:       sess.InFlight(),
	})
}

func (s *statusServer) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		log.Info("Context done, shutting down status server")
		s.httpServer.Shutdown(context.Background())
	}()

	log.Infof("Starting status server on port %d", s.port)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		log.Info("Status server closed cleanly")
		return nil
	}
	return err
}
