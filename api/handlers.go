package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Tarun9121/project-lambok/db"
	"github.com/Tarun9121/project-lambok/models"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// errBadRequest marks errors caused by malformed path or query parameters.
var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

// CurrentUser returns the user served by GET /user. It never touches
// storage, so every call yields an equal value.
func CurrentUser() models.User {
	return models.NewUserBuilder().
		SetID(0).
		SetName("tarun").
		SetEmail("tarun@gmail.com").
		SetPassword("0000").
		Build()
}

func (s *Server) getCurrentUser(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CurrentUser())
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.cfg.Users.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultLimit)
	if err == nil && (limit < 1 || limit > maxLimit) {
		err = fmt.Errorf("%w: limit must be between 1 and %d", errBadRequest, maxLimit)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err == nil && offset < 0 {
		err = fmt.Errorf("%w: offset must not be negative", errBadRequest)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	products, err := s.cfg.Products.List(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.cfg.Products.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.cfg.DB != nil {
		if err := s.cfg.DB.Ping(r.Context()); err != nil {
			s.logger.WarnContext(r.Context(), "api: health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func pathID(r *http.Request) (int, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return id, nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, key, raw)
	}
	return n, nil
}

// statusFor maps an error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case db.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusNotFound:
		msg = "not found"
	case http.StatusInternalServerError:
		s.logger.ErrorContext(r.Context(), "api: request failed",
			"request_id", RequestID(r.Context()), "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
