package group

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

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
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/members", h.AddMember)
	r.Get("/{id}/members", h.GetMembers)
	r.Put("/{id}/members/{userId}", h.UpdateMember)
	r.Delete("/{id}/members/{userId}", h.RemoveMember)
	r.Post("/{id}/accept", h.AcceptInvitation)
	return r
}

// Create godoc
// @Summary      Create a group
// @Description  Creates a group with the authenticated user as a joined admin
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        group  body      CreateGroupRequest  true  "Group to create"
// @Success      201    {object}  response.APIResponse{data=GroupResponse}
// @Failure      422    {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validation.Struct(&req); details != nil {
		response.ValidationFailed(w, details)
		return
	}

	g, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, g.ToResponse())
}

// GetByID godoc
// @Summary      Get a group with its members
// @Tags         groups
// @Produce      json
// @Param        id   path      string  true  "Group ID"
// @Success      200  {object}  response.APIResponse{data=GroupResponse}
// @Failure      404  {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	g, members, err := h.service.GetByIDWithMembers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := g.ToResponse()
	resp.Members = make([]*MemberResponse, 0, len(members))
	for _, m := range members {
		resp.Members = append(resp.Members, m.ToResponse())
	}
	response.JSON(w, http.StatusOK, resp)
}

// List godoc
// @Summary      List the authenticated user's groups
// @Tags         groups
// @Produce      json
// @Param        page      query     int  false  "Page number"     default(1)
// @Param        per_page  query     int  false  "Items per page"  default(20)
// @Success      200  {object}  response.APIResponse{data=[]GroupResponse}
// @Security     BearerAuth
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
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

	groups, total, err := h.service.ListByUserID(r.Context(), userID, page, perPage)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]*GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.ToResponse())
	}
	response.JSONWithMeta(w, http.StatusOK, out, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// Update godoc
// @Summary      Update a group
// @Description  Updates group fields; only joined admins may update
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id     path      string              true  "Group ID"
// @Param        group  body      UpdateGroupRequest  true  "Fields to update"
// @Success      200    {object}  response.APIResponse{data=GroupResponse}
// @Failure      403    {object}  response.APIResponse
// @Failure      404    {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validation.Struct(&req); details != nil {
		response.ValidationFailed(w, details)
		return
	}

	g, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, g.ToResponse())
}

// Delete godoc
// @Summary      Delete a group
// @Description  Deletes the group and all memberships; only joined admins may delete
// @Tags         groups
// @Param        id  path  string  true  "Group ID"
// @Success      204
// @Failure      403  {object}  response.APIResponse
// @Failure      404  {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddMember godoc
// @Summary      Invite a user to a group
// @Description  Adds the user with INVITED status; they join by accepting the invitation
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id      path      string            true  "Group ID"
// @Param        member  body      AddMemberRequest  true  "User to invite"
// @Success      201     {object}  response.APIResponse{data=MemberResponse}
// @Failure      403     {object}  response.APIResponse
// @Failure      409     {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validation.Struct(&req); details != nil {
		response.ValidationFailed(w, details)
		return
	}

	m, err := h.service.AddMember(r.Context(), chi.URLParam(r, "id"), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, m.ToResponse())
}

// GetMembers godoc
// @Summary      List group members
// @Tags         groups
// @Produce      json
// @Param        id   path      string  true  "Group ID"
// @Success      200  {object}  response.APIResponse{data=[]MemberResponse}
// @Failure      404  {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/members [get]
func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.GetMembers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]*MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, m.ToResponse())
	}
	response.JSON(w, http.StatusOK, out)
}

// UpdateMember godoc
// @Summary      Update a member's role or status
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id      path      string               true  "Group ID"
// @Param        userId  path      string               true  "User ID"
// @Param        member  body      UpdateMemberRequest  true  "Fields to update"
// @Success      200     {object}  response.APIResponse{data=MemberResponse}
// @Failure      403     {object}  response.APIResponse
// @Failure      404     {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/members/{userId} [put]
func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validation.Struct(&req); details != nil {
		response.ValidationFailed(w, details)
		return
	}

	m, err := h.service.UpdateMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userId"), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, m.ToResponse())
}

// RemoveMember godoc
// @Summary      Remove a member from a group
// @Description  Admins may remove anyone; members may remove themselves
// @Tags         groups
// @Param        id      path  string  true  "Group ID"
// @Param        userId  path  string  true  "User ID"
// @Success      204
// @Failure      403  {object}  response.APIResponse
// @Failure      404  {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/members/{userId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	err := h.service.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userId"), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcceptInvitation godoc
// @Summary      Accept a group invitation
// @Description  Flips the caller's membership from INVITED to JOINED
// @Tags         groups
// @Produce      json
// @Param        id   path      string  true  "Group ID"
// @Success      200  {object}  response.APIResponse{data=MemberResponse}
// @Failure      404  {object}  response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/accept [post]
func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	m, err := h.service.AcceptInvitation(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, m.ToResponse())
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrMemberNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrMemberAlreadyExists):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrNotAuthorized):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrNoInvitation):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "something went wrong")
	}
}
