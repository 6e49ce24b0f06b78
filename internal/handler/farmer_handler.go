package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"farmverify/internal/authz"
	"farmverify/internal/certificate"
	"farmverify/internal/errors"
	"farmverify/internal/middleware"
	"farmverify/internal/model"
	"farmverify/internal/service"
)

var renderCertificate = certificate.Bytes

// FarmerHandler serves the farmer-facing endpoints. Admins reach the
// certificate and location endpoints too.
type FarmerHandler struct {
	farmerService service.FarmerService
	log           *zap.Logger
}

// NewFarmerHandler creates a new farmer handler.
func NewFarmerHandler(farmerService service.FarmerService, log *zap.Logger) *FarmerHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FarmerHandler{farmerService: farmerService, log: log}
}

// UpdateLocationRequest carries new farm coordinates.
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// GetMyStatus godoc
// @Summary Get the caller's farmer record and certification status
// @Tags farmers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=model.Farmer}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /farmers/me/status [get]
func (h *FarmerHandler) GetMyStatus(c echo.Context) error {
	identity := middleware.Identity(c)
	if err := authz.Authorize(identity, authz.OpViewOwnFarmer); err != nil {
		return fail(err)
	}

	farmer, err := h.farmerService.GetByUserID(c.Request().Context(), identity.UserID)
	if err != nil {
		return fail(err)
	}
	return success(c, http.StatusOK, "Farmer status retrieved", farmer)
}

// GetCertificate godoc
// @Summary Download the certificate of a certified farmer
// @Tags farmers
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Farmer ID"
// @Success 200 {file} file
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /farmers/{id}/certificate [get]
func (h *FarmerHandler) GetCertificate(c echo.Context) error {
	farmer, err := h.authorizedFarmer(c, authz.OpDownloadCertificate)
	if err != nil {
		return err
	}

	data, err := h.farmerService.CertificateData(farmer)
	if err != nil {
		return fail(err)
	}

	// Nothing is sent until the whole document exists, so a failed build
	// still gets a structured error response.
	doc, err := renderCertificate(data)
	if err != nil {
		h.log.Error("certificate render failed",
			zap.String("farmer_id", farmer.ID.String()),
			zap.Error(err),
		)
		return fail(fmt.Errorf("certificate for farmer %s: %w", farmer.ID, err))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=certificate-%s.pdf", data.CertificateID))
	return c.Blob(http.StatusOK, "application/pdf", doc)
}

// UpdateLocation godoc
// @Summary Update farm coordinates and resolve the address
// @Tags farmers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Farmer ID"
// @Param request body UpdateLocationRequest true "Coordinates"
// @Success 200 {object} Response{data=model.Farmer}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /farmers/{id}/location [patch]
func (h *FarmerHandler) UpdateLocation(c echo.Context) error {
	var req UpdateLocationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	farmer, err := h.authorizedFarmer(c, authz.OpUpdateLocation)
	if err != nil {
		return err
	}

	updated, err := h.farmerService.UpdateLocation(c.Request().Context(), farmer.ID, *req.Latitude, *req.Longitude)
	if err != nil {
		return fail(err)
	}
	return success(c, http.StatusOK, "Location updated successfully", updated)
}

// authorizedFarmer loads the path farmer and runs the gate on it. A missing
// farmer is handed to the gate as nil so it decides between not found and
// forbidden.
func (h *FarmerHandler) authorizedFarmer(c echo.Context, op authz.Operation) (*model.Farmer, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}
	identity := middleware.Identity(c)
	if identity == nil {
		return nil, fail(errors.ErrUnauthenticated)
	}

	farmer, err := h.farmerService.GetByID(c.Request().Context(), id)
	if err != nil && !stderrors.Is(err, errors.ErrFarmerNotFound) {
		return nil, fail(err)
	}
	if err := authz.AuthorizeFarmer(identity, op, farmer); err != nil {
		return nil, fail(err)
	}
	return farmer, nil
}
