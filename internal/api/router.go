package api

import (
	"io"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lambda-comments/internal/intake"
	"lambda-comments/internal/models"
)

// maxBodyBytes caps POST /comments bodies.
const maxBodyBytes = 1 << 20

// Router serves the HTTP contract with chi. The client address is taken from the
// connection only; forwarding headers are client-controlled and never reach the classifier.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/comments", h.postComment)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []byte(`{"status":"ok"}`))
	})
	return r
}

func (h *Handler) postComment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		status, payload := respond(models.Accepted{}, intake.Invalid(MsgInvalidBody))
		writeJSON(w, status, payload)
		return
	}
	status, payload := h.submit(r.Context(), body, clientIP(r.RemoteAddr))
	writeJSON(w, status, payload)
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
