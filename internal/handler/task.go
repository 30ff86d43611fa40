package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hcardin/mesada/internal/auth"
	"github.com/hcardin/mesada/internal/email"
	"github.com/hcardin/mesada/internal/model"
	"github.com/hcardin/mesada/internal/store"
	"github.com/hcardin/mesada/internal/websocket"
)

type TaskHandler struct {
	tasks    *store.TaskStore
	users    *store.UserStore
	notifier *email.Notifier
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, us *store.UserStore, n *email.Notifier, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, users: us, notifier: n, hub: hub, logger: logger}
}

type createTaskRequest struct {
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	ConversionType string  `json:"conversion_type"`
	ChildID        int64   `json:"child_id"`
}

// Create registers a completed task for a child. When the submitter is a
// validator the task skips the pending state and is born validated.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if !model.ValidConversionType(req.ConversionType) {
		writeError(w, http.StatusBadRequest, "conversion_type must be 'money' or 'hours'")
		return
	}

	ac, _ := auth.FromContext(r.Context())

	// Children may only claim tasks for themselves.
	if !ac.Roles.Has(model.RoleValidator) && req.ChildID != ac.UserID {
		writeError(w, http.StatusForbidden, "cannot submit tasks for another user")
		return
	}

	child, err := h.users.GetByID(req.ChildID)
	if err != nil {
		h.logger.Error("get child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}
	if child == nil {
		writeError(w, http.StatusBadRequest, "child not found")
		return
	}

	var validatorID *int64
	if ac.Roles.Has(model.RoleValidator) {
		validatorID = &ac.UserID
	}

	task, err := h.tasks.Create(req.Name, req.Amount, model.ConversionType(req.ConversionType), req.ChildID, ac.UserID, validatorID)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.hub.Broadcast(websocket.EntityChange("task", "created", task.ID))
	h.notifyTaskCreated(task, child)
	writeJSON(w, http.StatusCreated, task)
}

// List returns tasks, optionally filtered with ?validated=true|false. Users
// without the validator role only ever see their own tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	if !ac.Roles.Has(model.RoleValidator) {
		tasks, err := h.tasks.ListByChild(ac.UserID)
		if err != nil {
			h.logger.Error("list tasks", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list tasks")
			return
		}
		if tasks == nil {
			tasks = []model.Task{}
		}
		writeJSON(w, http.StatusOK, tasks)
		return
	}

	var validated *bool
	switch r.URL.Query().Get("validated") {
	case "true":
		v := true
		validated = &v
	case "false":
		v := false
		validated = &v
	}

	tasks, err := h.tasks.List(validated)
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.tasks.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Validate approves a pending task. Validating an already-validated task is
// a no-op that returns the task as it stands.
func (h *TaskHandler) Validate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	ac, _ := auth.FromContext(r.Context())

	wasPending := false
	if existing, err := h.tasks.GetByID(id); err == nil && existing != nil {
		wasPending = !existing.Validated
	}

	task, err := h.tasks.Validate(id, ac.UserID)
	if err != nil {
		h.logger.Error("validate task", "error", err, "task_id", id)
		writeError(w, http.StatusInternalServerError, "failed to validate task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if wasPending {
		h.hub.Broadcast(websocket.EntityChange("task", "validated", task.ID))
		h.notifyTaskValidated(task)
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	deleted, err := h.tasks.Delete(id)
	if err != nil {
		h.logger.Error("delete task", "error", err, "task_id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	h.hub.Broadcast(websocket.EntityChange("task", "deleted", id))
	w.WriteHeader(http.StatusNoContent)
}

// notifyTaskCreated emails the validators that a task awaits review. Mail
// failures are logged and never fail the request.
func (h *TaskHandler) notifyTaskCreated(task *model.Task, child *model.User) {
	if task.Validated {
		return
	}
	recipients := h.validatorEmails()
	if len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("Task pending validation: %s", task.Name)
	body := fmt.Sprintf("%s submitted the task %q (%.2f %s) and it is waiting for validation.",
		child.Name, task.Name, task.Amount, task.ConversionType)
	h.sendMail(recipients, subject, body)
}

// notifyTaskValidated emails the child whose task was approved.
func (h *TaskHandler) notifyTaskValidated(task *model.Task) {
	child, err := h.users.GetByID(task.ChildID)
	if err != nil || child == nil || child.Email == nil {
		return
	}

	subject := fmt.Sprintf("Task validated: %s", task.Name)
	body := fmt.Sprintf("Your task %q was validated. %.2f %s has been added to your balance.",
		task.Name, task.Amount, task.ConversionType)
	h.sendMail([]string{*child.Email}, subject, body)
}

func (h *TaskHandler) validatorEmails() []string {
	users, err := h.users.List()
	if err != nil {
		h.logger.Error("list users for notification", "error", err)
		return nil
	}
	var out []string
	for _, u := range users {
		if u.Roles.Has(model.RoleValidator) && u.Email != nil {
			out = append(out, *u.Email)
		}
	}
	return out
}

func (h *TaskHandler) sendMail(to []string, subject, body string) {
	err := h.notifier.Send(to, subject, body)
	if err == nil || errors.Is(err, email.ErrNotConfigured) {
		return
	}
	h.logger.Warn("send notification", "error", err, "subject", subject)
}
