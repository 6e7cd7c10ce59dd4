package api

import (
	"strings"
	"time"

	"FxPilot/internal/domain/models"
	xhttp "FxPilot/pkg/http"
	"FxPilot/pkg/util"

	"github.com/labstack/echo/v4"
)

// executeResponse always comes back with HTTP 200; Ticket is null when the
// broker did not fill the order.
type executeResponse struct {
	Ticket *string                `json:"ticket"`
	Error  string                 `json:"error,omitempty"`
	Result models.ExecutionResult `json:"result"`
}

func (h *Handler) Execute(c echo.Context) error {
	req := &models.ExecuteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig := models.Signal{
		Symbol:     strings.ToUpper(req.Symbol),
		Action:     models.Action(req.Action),
		Confidence: *req.Confidence,
		StopLoss:   *req.StopLoss,
		TakeProfit: *req.TakeProfit,
		Timestamp:  util.ParseTimeDefault(req.Timestamp, time.Now().UTC()),
	}
	res := h.execution.Submit(c.Request().Context(), models.NewExecutionRequest(sig, h.store.Strategy()), models.OriginManual)

	out := executeResponse{Result: res}
	if res.Filled() {
		ticket := res.Ticket
		out.Ticket = &ticket
	} else {
		out.Error = res.Diagnostic
	}
	return xhttp.SuccessResponse(c, out)
}

// Executions lists the journal, newest first.
func (h *Handler) Executions(c echo.Context) error {
	req := &models.ExecutionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows := h.execution.Journal(req.Limit)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}
