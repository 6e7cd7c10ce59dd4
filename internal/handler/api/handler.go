package api

import (
	"errors"

	"FxPilot/internal/domain/models"
	"FxPilot/internal/usecase"
	xhttp "FxPilot/pkg/http"
	xlogger "FxPilot/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Handler serves the desk API under /api.
type Handler struct {
	logger    *xlogger.Logger
	store     *usecase.StrategyStore
	signals   *usecase.SignalProvider
	watchlist *usecase.Watchlist
	autopilot *usecase.Autopilot
	execution *usecase.ExecutionService
	account   *usecase.AccountService
}

var _ xhttp.RouteRegistrar = (*Handler)(nil)

func NewHandler(
	logger *xlogger.Logger,
	store *usecase.StrategyStore,
	signals *usecase.SignalProvider,
	watchlist *usecase.Watchlist,
	autopilot *usecase.Autopilot,
	execution *usecase.ExecutionService,
	account *usecase.AccountService,
) *Handler {
	return &Handler{
		logger:    logger.With(xlogger.String("component", "api")),
		store:     store,
		signals:   signals,
		watchlist: watchlist,
		autopilot: autopilot,
		execution: execution,
		account:   account,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signal", h.Signal)
	g.GET("/signals", h.Signals)
	g.GET("/strategy", h.GetStrategy)
	g.POST("/strategy", h.UpdateStrategy)
	g.GET("/autopilot", h.GetAutopilot)
	g.POST("/autopilot", h.SetAutopilot)
	g.POST("/execute", h.Execute)
	g.GET("/executions", h.Executions)
	g.GET("/metrics", h.Metrics)
	g.GET("/status", h.Status)
	g.GET("/trades", h.Trades)
	g.GET("/symbols", h.Symbols)
}

// errorResponse maps domain errors onto HTTP statuses.
func (h *Handler) errorResponse(c echo.Context, err error) error {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return xhttp.BadRequestResponse(c, xhttp.ViolationErrors(verr))
	case errors.Is(err, models.ErrInsufficientHistory), errors.Is(err, models.ErrInvalidMarketData):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(err.Error()).WithError(err))
	case errors.Is(err, models.ErrCollaboratorUnavailable):
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError(err.Error()).WithError(err))
	default:
		h.logger.Error("request failed", xlogger.String("path", c.Path()), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Something went wrong").WithError(err))
	}
}
