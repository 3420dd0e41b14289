package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"Gateway/internal/auth"
	"Gateway/internal/repo"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	Repo repo.Repository
}

// List returns all users, or only those waiting for approval with ?pending=1.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pending, _ := strconv.ParseBool(r.URL.Query().Get("pending"))
	users, err := h.Repo.ListUsers(r.Context(), pending)
	if err != nil {
		logrus.WithError(err).Error("list users")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []repo.User{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// Update approves, promotes or archives a user.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	var upd repo.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if upd.Approved == nil && upd.Admin == nil && upd.Archived == nil {
		http.Error(w, "Nothing to update", http.StatusBadRequest)
		return
	}
	self, _ := auth.UserID(r.Context())
	if id == self && ((upd.Admin != nil && !*upd.Admin) || (upd.Archived != nil && *upd.Archived)) {
		http.Error(w, "Cannot demote or archive yourself", http.StatusBadRequest)
		return
	}

	u, err := h.Repo.UpdateUser(r.Context(), id, upd)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		logrus.WithError(err).Error("update user")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	logrus.WithFields(logrus.Fields{
		"admin":    auth.Login(r.Context()),
		"user":     u.Login,
		"approved": u.Approved,
		"is_admin": u.Admin,
		"archived": u.Archived,
	}).Info("user updated")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}
