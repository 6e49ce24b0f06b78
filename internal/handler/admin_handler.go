package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"farmverify/internal/authz"
	"farmverify/internal/middleware"
	"farmverify/internal/model"
	"farmverify/internal/service"
)

// AdminHandler serves the admin review endpoints.
type AdminHandler struct {
	farmerService service.FarmerService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(farmerService service.FarmerService) *AdminHandler {
	return &AdminHandler{farmerService: farmerService}
}

// SetStatusRequest is an admin certification decision.
type SetStatusRequest struct {
	Status model.CertificationStatus `json:"status" validate:"required,oneof=PENDING CERTIFIED DECLINED"`
	Reason string                    `json:"reason,omitempty" validate:"max=1000"`
}

// ListFarmers godoc
// @Summary List farmers
// @Description Newest first. search matches farmer name or owner email, case-insensitively.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Certification status" Enums(PENDING, CERTIFIED, DECLINED)
// @Param search query string false "Name or email substring"
// @Success 200 {object} Response{data=[]model.Farmer}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/farmers [get]
func (h *AdminHandler) ListFarmers(c echo.Context) error {
	if err := authz.Authorize(middleware.Identity(c), authz.OpListFarmers); err != nil {
		return fail(err)
	}

	status := model.CertificationStatus(strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))))
	farmers, err := h.farmerService.List(c.Request().Context(), status, c.QueryParam("search"))
	if err != nil {
		return fail(err)
	}
	return success(c, http.StatusOK, "Farmers retrieved", farmers)
}

// GetStats godoc
// @Summary Count farmers per certification status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=model.FarmerStats}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/farmers/stats [get]
func (h *AdminHandler) GetStats(c echo.Context) error {
	if err := authz.Authorize(middleware.Identity(c), authz.OpViewStats); err != nil {
		return fail(err)
	}

	stats, err := h.farmerService.Stats(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return success(c, http.StatusOK, "Stats retrieved", stats)
}

// GetFarmer godoc
// @Summary Get a farmer by ID
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Farmer ID"
// @Success 200 {object} Response{data=model.Farmer}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/farmers/{id} [get]
func (h *AdminHandler) GetFarmer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := authz.Authorize(middleware.Identity(c), authz.OpViewAnyFarmer); err != nil {
		return fail(err)
	}

	farmer, err := h.farmerService.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return success(c, http.StatusOK, "Farmer retrieved", farmer)
}

// SetStatus godoc
// @Summary Certify or decline a farmer
// @Description PENDING is accepted by the schema but rejected: a decision cannot be reverted to pending.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Farmer ID"
// @Param request body SetStatusRequest true "Decision"
// @Success 200 {object} Response{data=model.Farmer}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/farmers/{id}/status [patch]
func (h *AdminHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	identity := middleware.Identity(c)
	if err := authz.Authorize(identity, authz.OpSetStatus); err != nil {
		return fail(err)
	}

	var req SetStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	farmer, err := h.farmerService.SetStatus(c.Request().Context(), id, identity.UserID, req.Status, req.Reason)
	if err != nil {
		return fail(err)
	}
	return success(c, http.StatusOK, "Farmer status updated to "+string(farmer.CertificationStatus), farmer)
}
