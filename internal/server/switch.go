package server

import (
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
)

// Switch serves through the router stored last, so a rebuilt router can
// replace a live one without dropping requests.
type Switch struct {
	router atomic.Pointer[chi.Mux]
}

func NewSwitch(r *chi.Mux) *Switch {
	s := &Switch{}
	s.router.Store(r)
	return s
}

// Store swaps in r for subsequent requests.
func (s *Switch) Store(r *chi.Mux) {
	s.router.Store(r)
}

// ServeHTTP implements http.Handler using the current router.
func (s *Switch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router := s.router.Load()
	if router == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	router.ServeHTTP(w, r)
}
