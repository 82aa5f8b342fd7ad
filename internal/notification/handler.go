package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ykuznetsov/settleup/pkg/middleware"
	"github.com/ykuznetsov/settleup/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/unread-count", h.GetUnreadCount)
	r.Put("/{id}/read", h.MarkAsRead)
	r.Put("/read-all", h.MarkAllAsRead)
	return r
}

// List godoc
// @Summary      List the authenticated user's notifications
// @Tags         notifications
// @Produce      json
// @Param        unread_only  query     bool  false  "Only unread notifications"
// @Param        page         query     int   false  "Page number"     default(1)
// @Param        per_page     query     int   false  "Items per page"  default(20)
// @Success      200  {object}  response.APIResponse{data=[]Notification}
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	unreadOnly := q.Get("unread_only") == "true"
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	notifications, total, err := h.service.ListByRecipientID(r.Context(), userID, page, perPage, unreadOnly)
	if err != nil {
		response.InternalError(w, "something went wrong")
		return
	}
	if notifications == nil {
		notifications = []*Notification{}
	}
	response.JSONWithMeta(w, http.StatusOK, notifications, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// GetUnreadCount godoc
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /notifications/unread-count [get]
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	count, err := h.service.GetUnreadCount(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "something went wrong")
		return
	}
	response.JSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

// MarkAsRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Param        id  path  string  true  "Notification ID"
// @Success      204
// @Failure      403  {object}  response.APIResponse
// @Failure      404  {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /notifications/{id}/read [put]
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	err := h.service.MarkAsRead(r.Context(), chi.URLParam(r, "id"), userID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrNotificationNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotRecipient):
		response.Forbidden(w, err.Error())
	default:
		response.InternalError(w, "something went wrong")
	}
}

// MarkAllAsRead godoc
// @Summary      Mark all notifications as read
// @Tags         notifications
// @Success      204
// @Security     BearerAuth
// @Router       /notifications/read-all [put]
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	if err := h.service.MarkAllAsRead(r.Context(), userID); err != nil {
		response.InternalError(w, "something went wrong")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
