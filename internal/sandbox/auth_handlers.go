package sandbox

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/example/dayof/internal/ctxutil"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string  `json:"token"`
	Vendor *vendor `json:"vendor"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	v, err := s.store.addVendor(req.Name, req.Email, strings.TrimSpace(req.Phone), req.Password)
	if errors.Is(err, errVendorExists) {
		writeError(w, http.StatusBadRequest, "Vendor already exists")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "register failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	s.respondWithToken(w, r, http.StatusCreated, v)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	v, ok := s.store.authenticate(strings.TrimSpace(req.Email), req.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.respondWithToken(w, r, http.StatusOK, v)
}

func (s *Server) respondWithToken(w http.ResponseWriter, r *http.Request, status int, v *vendor) {
	token, err := s.tokens.GenerateToken(v.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "token generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	writeJSON(w, status, authResponse{Token: token, Vendor: v})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	v, ok := s.store.vendor(ctxutil.VendorFromContext(r.Context()))
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized, vendor not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vendor": v})
}
