package api

import (
	"FxPilot/internal/domain/models"
	xhttp "FxPilot/pkg/http"
	xlogger "FxPilot/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *Handler) GetStrategy(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.store.Strategy())
}

// UpdateStrategy replaces the parameters as a whole. Missing fields are not
// defaulted; they fail validation like any other out of range value.
func (h *Handler) UpdateStrategy(c echo.Context) error {
	var candidate models.StrategyParameters
	if err := c.Bind(&candidate); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("invalid strategy body").WithError(err))
	}

	params, err := h.store.UpdateStrategy(candidate)
	if err != nil {
		h.logger.Warn("strategy update rejected", xlogger.Error(err))
		return h.errorResponse(c, err)
	}
	h.logger.Info("strategy updated", xlogger.Any("strategy", params))
	return xhttp.SuccessResponse(c, params)
}

func (h *Handler) GetAutopilot(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.autopilot.View())
}

func (h *Handler) SetAutopilot(c echo.Context) error {
	req := &models.AutopilotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	h.store.SetAutopilotState(*req.Enabled)
	h.logger.Info("autopilot toggled", xlogger.Bool("enabled", *req.Enabled))
	return xhttp.SuccessResponse(c, h.autopilot.View())
}
