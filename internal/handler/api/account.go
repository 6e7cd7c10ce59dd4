package api

import (
	xhttp "FxPilot/pkg/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) Metrics(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.account.Metrics(c.Request().Context()))
}

func (h *Handler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.account.Status(c.Request().Context()))
}

func (h *Handler) Trades(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.account.OpenTrades(c.Request().Context()))
}
