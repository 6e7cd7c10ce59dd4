package api

import (
	"FxPilot/internal/domain/models"
	xhttp "FxPilot/pkg/http"
	"FxPilot/pkg/util"

	"github.com/labstack/echo/v4"
)

// Signal returns the current signal for one symbol under the active strategy.
func (h *Handler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.signals.Obtain(c.Request().Context(), req.Symbol, h.store.Strategy())
	if err != nil {
		return h.errorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, sig)
}

// Signals scans a comma separated watchlist.
func (h *Handler) Signals(c echo.Context) error {
	req := &models.WatchlistRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.watchlist.Scan(c.Request().Context(), util.SplitList(req.Symbols))
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) Symbols(c echo.Context) error {
	return xhttp.SuccessResponse(c, models.SupportedSymbols)
}
