package settlement

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ykuznetsov/settleup/pkg/middleware"
	"github.com/ykuznetsov/settleup/pkg/response"
)

// Handler handles HTTP requests for balance and settlement queries
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetPlan)
	r.Get("/group/{groupId}", h.GetGroupPlan)

	return r
}

// GetPlan handles GET /balances
// @Summary      Get settlement plan
// @Description  Compute net balances and the optimized settlement list. Pass user_id to get a single participant's view.
// @Tags         balances
// @Produce      json
// @Param        user_id query string false "Participant ID for a per-user view"
// @Success      200 {object} response.APIResponse{data=PlanResponse}
// @Failure      500 {object} response.APIResponse
// @Router       /balances [get]
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		view, err := h.service.PlanForUser(r.Context(), userID)
		if err != nil {
			response.InternalError(w, "Failed to compute balances")
			return
		}
		response.JSON(w, http.StatusOK, view.ToResponse())
		return
	}

	plan, err := h.service.Plan(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	response.JSON(w, http.StatusOK, plan.ToResponse())
}

// GetGroupPlan handles GET /balances/group/{groupId}
// @Summary      Get group settlement plan
// @Description  Compute the settlement plan over a single group's expenses
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=PlanResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /balances/group/{groupId} [get]
func (h *Handler) GetGroupPlan(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID := chi.URLParam(r, "groupId")

	plan, err := h.service.PlanForGroup(r.Context(), groupID, requesterID)
	if err != nil {
		if errors.Is(err, ErrNotGroupMember) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to compute group balances")
		return
	}

	response.JSON(w, http.StatusOK, plan.ToResponse())
}
