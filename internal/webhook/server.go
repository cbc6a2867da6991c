package webhook

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Server terminates the two HTTP routes: the unauthenticated health
// probe and the secret-gated webhook.
type Server struct {
	secret     string
	dispatcher *Dispatcher
}

func NewServer(secret string, dispatcher *Dispatcher) *Server {
	return &Server{secret: secret, dispatcher: dispatcher}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleHealth)
	r.Post("/webhook/{secret}", s.handleUpdate)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeOK(w)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	// Reject before touching the body: probing traffic learns nothing
	// about what this endpoint accepts.
	if chi.URLParam(r, "secret") != s.secret {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.dispatcher.Dispatch(r.Context(), update)

	// Always acknowledge: Telegram must not retry on handler failures.
	writeOK(w)
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
