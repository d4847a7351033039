package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pivotalflow/platform-api/internal/core/domain"
	"github.com/pivotalflow/platform-api/internal/core/ports"
)

// AllocationHandler handles HTTP requests for resource allocation operations.
type AllocationHandler struct {
	service ports.AllocationService
}

func NewAllocationHandler(service ports.AllocationService) *AllocationHandler {
	return &AllocationHandler{service: service}
}

// Create handles POST /v1/allocations.
//
// @Summary      Create a resource allocation
// @Tags         allocations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAllocationRequest  true  "Allocation details"
// @Success      201   {object}  allocationResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  conflictResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/allocations [post]
func (h *AllocationHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createAllocationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "start_date must be YYYY-MM-DD"})
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "end_date must be YYYY-MM-DD"})
	}

	alloc, err := h.service.Create(c.Request().Context(), actor, ports.CreateAllocationInput{
		ProjectID: req.ProjectID,
		UserID:    req.UserID,
		Role:      req.Role,
		Percent:   req.Percent,
		StartDate: start,
		EndDate:   end,
		Billable:  req.Billable,
		Notes:     req.Notes,
	})
	if err != nil {
		return allocationError(c, err)
	}

	return c.JSON(http.StatusCreated, toAllocationResponse(alloc))
}

// Get handles GET /v1/allocations/:id.
//
// @Summary      Get an allocation by id
// @Tags         allocations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Allocation id"
// @Success      200  {object}  allocationResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/allocations/{id} [get]
func (h *AllocationHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	alloc, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return allocationError(c, err)
	}

	return c.JSON(http.StatusOK, toAllocationResponse(alloc))
}

// List handles GET /v1/allocations.
//
// @Summary      List allocations
// @Tags         allocations
// @Produce      json
// @Security     BearerAuth
// @Param        project_id  query     string  false  "Filter by project"
// @Param        user_id     query     string  false  "Filter by user"
// @Param        role        query     string  false  "Filter by role"
// @Param        billable    query     bool    false  "Filter by billable flag"
// @Param        date_from   query     string  false  "Overlap window start (YYYY-MM-DD)"
// @Param        date_to     query     string  false  "Overlap window end (YYYY-MM-DD)"
// @Param        page        query     int     false  "Page number (1-based)"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Success      200  {object}  listAllocationsResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/allocations [get]
func (h *AllocationHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	input := ports.ListAllocationsInput{
		ProjectID: c.QueryParam("project_id"),
		UserID:    c.QueryParam("user_id"),
		Role:      c.QueryParam("role"),
	}

	if raw := c.QueryParam("billable"); raw != "" {
		billable, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "billable must be true or false"})
		}
		input.Billable = &billable
	}
	if raw := c.QueryParam("date_from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "date_from must be YYYY-MM-DD"})
		}
		input.DateFrom = from
	}
	if raw := c.QueryParam("date_to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "date_to must be YYYY-MM-DD"})
		}
		input.DateTo = to
	}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.List(c.Request().Context(), actor, input)
	if err != nil {
		return allocationError(c, err)
	}

	data := make([]allocationResponse, 0, len(result.Items))
	for i := range result.Items {
		data = append(data, toAllocationResponse(&result.Items[i]))
	}

	return c.JSON(http.StatusOK, listAllocationsResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// Update handles PATCH /v1/allocations/:id.
//
// @Summary      Update an allocation
// @Tags         allocations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Allocation id"
// @Param        body  body      updateAllocationRequest  true  "Fields to change"
// @Success      200   {object}  allocationResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  conflictResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/allocations/{id} [patch]
func (h *AllocationHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateAllocationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	patch := ports.UpdateAllocationInput{
		Percent:  req.Percent,
		Billable: req.Billable,
		Notes:    req.Notes,
	}
	if req.Role != nil {
		patch.Role = req.Role
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "start_date must be YYYY-MM-DD"})
		}
		patch.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "end_date must be YYYY-MM-DD"})
		}
		patch.EndDate = &end
	}

	alloc, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), patch)
	if err != nil {
		return allocationError(c, err)
	}

	return c.JSON(http.StatusOK, toAllocationResponse(alloc))
}

// Delete handles DELETE /v1/allocations/:id.
//
// @Summary      Delete an allocation
// @Tags         allocations
// @Security     BearerAuth
// @Param        id  path  string  true  "Allocation id"
// @Success      204  "No Content"
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/allocations/{id} [delete]
func (h *AllocationHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return allocationError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Capacity handles GET /v1/projects/:id/capacity.
//
// @Summary      Weekly capacity summary for a project
// @Tags         capacity
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Project id"
// @Param        weeks  query     int     false  "Trailing window length in weeks (1-52, default 8)"
// @Success      200    {object}  capacityResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Failure      500    {object}  errorResponse
// @Router       /v1/projects/{id}/capacity [get]
func (h *AllocationHandler) Capacity(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	weeks := 0
	if raw := c.QueryParam("weeks"); raw != "" {
		weeks, err = strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "weeks must be an integer"})
		}
	}

	summary, err := h.service.ProjectCapacity(c.Request().Context(), actor, c.Param("id"), weeks)
	if err != nil {
		return allocationError(c, err)
	}

	return c.JSON(http.StatusOK, toCapacityResponse(summary))
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, raw)
}

// allocationError maps domain failures onto HTTP status codes. Conflicts keep
// their full report list in the body.
func allocationError(c echo.Context, err error) error {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		return c.JSON(http.StatusConflict, conflictResponse{
			Error:     conflictErr.Error(),
			Conflicts: conflictErr.Reports,
		})
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: validationErr.Error()})
	}

	var permissionErr *domain.PermissionDeniedError
	if errors.As(err, &permissionErr) {
		return c.JSON(http.StatusForbidden, errorResponse{Error: permissionErr.Error()})
	}

	switch {
	case errors.Is(err, domain.ErrAllocationNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "allocation not found"})
	case errors.Is(err, domain.ErrProjectNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "project not found"})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Error: "access forbidden"})
	}

	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
