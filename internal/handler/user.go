package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hcardin/mesada/internal/auth"
	"github.com/hcardin/mesada/internal/model"
	"github.com/hcardin/mesada/internal/policy"
	"github.com/hcardin/mesada/internal/storage"
	"github.com/hcardin/mesada/internal/store"
	"github.com/hcardin/mesada/internal/websocket"
)

// maxPhotoBytes caps the accepted photo upload size.
const maxPhotoBytes = 10 << 20

type UserHandler struct {
	users    *store.UserStore
	uploader *storage.Uploader
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewUserHandler(us *store.UserStore, up *storage.Uploader, hub *websocket.Hub, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: us, uploader: up, hub: hub, logger: logger}
}

type createUserRequest struct {
	Name     string   `json:"name"`
	Email    *string  `json:"email"`
	Roles    []string `json:"roles"`
	Password *string  `json:"password"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	roles := model.ParseRoleSet(strings.Join(req.Roles, ","))

	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		existing, err := h.users.GetByEmail(*req.Email)
		if err != nil {
			h.logger.Error("check email", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create user")
			return
		}
		if existing != nil {
			writeError(w, http.StatusConflict, "email already in use")
			return
		}
	}

	var hash *string
	if req.Password != nil && *req.Password != "" {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.logger.Error("hash password", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create user")
			return
		}
		hash = &hashed
	}

	user, err := h.users.Create(req.Name, req.Email, roles, hash)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.hub.Broadcast(websocket.EntityChange("user", "created", user.ID))
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Name  string   `json:"name"`
	Email *string  `json:"email"`
	Roles []string `json:"roles"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	existing, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	roles := model.ParseRoleSet(strings.Join(req.Roles, ","))

	user, err := h.users.Update(id, req.Name, req.Email, roles)
	if err != nil {
		h.logger.Error("update user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	h.hub.Broadcast(websocket.EntityChange("user", "updated", user.ID))
	writeJSON(w, http.StatusOK, user)
}

// UpdateEmail changes a single user's email. Validators may change anyone's;
// everyone else only their own.
func (h *UserHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	if !policy.CanEditEmail(ac.Roles, ac.UserID, id) {
		writeError(w, http.StatusForbidden, "cannot edit this user's email")
		return
	}

	var req struct {
		Email *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	existing, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update email")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		other, err := h.users.GetByEmail(*req.Email)
		if err != nil {
			h.logger.Error("check email", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update email")
			return
		}
		if other != nil && other.ID != id {
			writeError(w, http.StatusConflict, "email already in use")
			return
		}
	}

	user, err := h.users.UpdateEmail(id, req.Email)
	if err != nil {
		h.logger.Error("update email", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update email")
		return
	}

	h.hub.Broadcast(websocket.EntityChange("user", "updated", user.ID))
	writeJSON(w, http.StatusOK, user)
}

// UpdatePassword sets a new password. Validators may reset anyone's;
// everyone else only their own.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	if !ac.Roles.Has(model.RoleValidator) && ac.UserID != id {
		writeError(w, http.StatusForbidden, "cannot change this user's password")
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	existing, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}
	if err := h.users.UpdatePasswordHash(id, hash); err != nil {
		h.logger.Error("update password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto accepts an image in the request body, stores it and records
// the resulting URL. Users may upload their own photo; validators anyone's.
func (h *UserHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	if !ac.Roles.Has(model.RoleValidator) && ac.UserID != id {
		writeError(w, http.StatusForbidden, "cannot change this user's photo")
		return
	}

	if !h.uploader.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "photo storage not configured")
		return
	}

	existing, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upload photo")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxPhotoBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read photo")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "photo body is empty")
		return
	}
	if len(data) > maxPhotoBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "photo too large")
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "photo.jpg"
	}

	url, err := h.uploader.Upload(r.Context(), id, data, filename)
	if err != nil {
		h.logger.Error("upload photo", "error", err, "user_id", id)
		writeError(w, http.StatusBadGateway, "failed to upload photo")
		return
	}

	user, err := h.users.UpdatePhotoURL(id, url)
	if err != nil {
		h.logger.Error("record photo url", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upload photo")
		return
	}

	h.hub.Broadcast(websocket.EntityChange("user", "updated", user.ID))
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	if ac.UserID == id {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	deleted, err := h.users.Delete(id)
	if err != nil {
		h.logger.Error("delete user", "error", err, "user_id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	h.hub.Broadcast(websocket.EntityChange("user", "deleted", id))
	w.WriteHeader(http.StatusNoContent)
}
