package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ykuznetsov/settleup/internal/expense/split"
	"github.com/ykuznetsov/settleup/pkg/middleware"
	"github.com/ykuznetsov/settleup/pkg/response"
	"github.com/ykuznetsov/settleup/pkg/validation"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateExpense)
	r.Get("/", h.ListExpenses)
	r.Get("/export", h.ExportExpenses)
	r.Get("/{id}", h.GetExpense)
	r.Put("/{id}", h.UpdateExpense)
	r.Delete("/{id}", h.DeleteExpense)
	return r
}

// CreateExpense godoc
// @Summary      Create an expense
// @Description  Records an expense paid by the authenticated user and splits it across the participants
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        expense  body      CreateExpenseRequest  true  "Expense to create"
// @Success      201      {object}  response.APIResponse{data=ExpenseResponse}
// @Failure      400      {object}  response.APIResponse
// @Failure      422      {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /expenses [post]
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validation.Struct(&req); details != nil {
		response.ValidationFailed(w, details)
		return
	}

	created, err := h.service.Create(r.Context(), payerID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created.ToResponse())
}

// GetExpense godoc
// @Summary      Get an expense
// @Tags         expenses
// @Produce      json
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.APIResponse{data=ExpenseResponse}
// @Failure      404  {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [get]
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, found.ToResponse())
}

// ListExpenses godoc
// @Summary      List expenses
// @Description  Lists non-deleted expenses, newest first, optionally filtered by user, group, or date range
// @Tags         expenses
// @Produce      json
// @Param        user_id     query     string  false  "Only expenses this user paid or shares in"
// @Param        group_id    query     string  false  "Only expenses in this group"
// @Param        start_date  query     string  false  "RFC 3339 lower bound on the expense date"
// @Param        end_date    query     string  false  "RFC 3339 upper bound on the expense date"
// @Param        page        query     int     false  "Page number"      default(1)
// @Param        per_page    query     int     false  "Items per page"   default(20)
// @Success      200  {object}  response.APIResponse{data=[]ExpenseResponse}
// @Security     BearerAuth
// @Router       /expenses [get]
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	expenses, total, err := h.service.List(r.Context(), filter, page, perPage)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]*ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, e.ToResponse())
	}
	response.JSONWithMeta(w, http.StatusOK, out, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// UpdateExpense godoc
// @Summary      Update an expense
// @Description  Updates expense fields; changing the amount, split type, or participants recomputes all shares
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Expense ID"
// @Param        expense  body      UpdateExpenseRequest  true  "Fields to update"
// @Success      200      {object}  response.APIResponse{data=ExpenseResponse}
// @Failure      400      {object}  response.APIResponse
// @Failure      404      {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [put]
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validation.Struct(&req); details != nil {
		response.ValidationFailed(w, details)
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated.ToResponse())
}

// DeleteExpense godoc
// @Summary      Delete an expense
// @Description  Soft-deletes the expense; it disappears from listings and balance computations
// @Tags         expenses
// @Param        id  path  string  true  "Expense ID"
// @Success      204
// @Failure      404  {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [delete]
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrExpenseNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrPayerNotParticipant), errors.Is(err, ErrParticipantsRequired):
		response.BadRequest(w, err.Error())
	case isSplitError(err):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "something went wrong")
	}
}

// isSplitError reports whether err is a share-calculation validation
// failure, which the API surfaces verbatim as a 400.
func isSplitError(err error) bool {
	var (
		weightSum *split.WeightSumError
		mismatch  *split.MismatchError
	)
	return errors.Is(err, split.ErrInvalidAmount) ||
		errors.Is(err, split.ErrInvalidParticipants) ||
		errors.Is(err, split.ErrInvalidWeight) ||
		errors.Is(err, split.ErrMissingWeight) ||
		errors.Is(err, split.ErrMissingAmount) ||
		errors.As(err, &weightSum) ||
		errors.As(err, &mismatch)
}

func filterFromQuery(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	filter := ListFilter{
		UserID:  q.Get("user_id"),
		GroupID: q.Get("group_id"),
	}
	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("start_date must be RFC 3339")
		}
		filter.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("end_date must be RFC 3339")
		}
		filter.EndDate = &t
	}
	return filter, nil
}
