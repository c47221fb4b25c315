package handlers

import (
	"net/http"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"

	"go.uber.org/zap"
)

type UserHandler struct {
	UserService UserService
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{UserService: userService}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request dto.RegisterUserRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	u, err := h.UserService.Register(r.Context(), request.Email, request.Username)
	if err != nil {
		handleError(w, r, err, "register_user")
		return
	}

	logger.Info("HTTP_OUT: user registered",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("user_id", u.ID.String()))
	responseWithBody(w, http.StatusCreated, dto.FromUser(u))
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUser(w, r)
	if !ok {
		return
	}
	u, err := h.UserService.GetUser(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "get_user")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromUser(u))
}

// DeleteMe removes the caller with all of their tags and tasks.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.UserService.DeleteUser(r.Context(), id); err != nil {
		handleError(w, r, err, "delete_user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
