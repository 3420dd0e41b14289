package profile

import (
	"Gateway/internal/auth"
	"Gateway/internal/repo"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

type ProfileHandler struct {
	Repo repo.Repository
}

type OnboardRequest struct {
	Name        string `json:"name"`
	Institution string `json:"institution"`
}

const maxField = 200

func (h *ProfileHandler) user(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

func writeUser(w http.ResponseWriter, u repo.User) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

// Me returns the signed-in user, including approval and onboarding state.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	u, err := h.Repo.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		}
		logrus.WithError(err).Error("load profile")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	writeUser(w, u)
}

// Onboard stores the name and institution asked for after registration.
func (h *ProfileHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	var req OnboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Institution = strings.TrimSpace(req.Institution)
	if req.Name == "" || req.Institution == "" {
		http.Error(w, "Name and institution are required", http.StatusBadRequest)
		return
	}
	if len(req.Name) > maxField || len(req.Institution) > maxField {
		http.Error(w, "Field too long", http.StatusBadRequest)
		return
	}

	u, err := h.Repo.Onboard(r.Context(), userID, req.Name, req.Institution)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		}
		logrus.WithError(err).Error("onboard")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	logrus.WithField("user", u.Login).Info("user onboarded")
	writeUser(w, u)
}
