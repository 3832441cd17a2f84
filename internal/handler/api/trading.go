package api

import (
	"time"

	models "PairPull/internal/domain/models"
	"PairPull/internal/usecase"
	xhttp "PairPull/pkg/http"
	xlogger "PairPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TradingEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
// All endpoints are read-only: order submission happens only inside the daily cycle.
type TradingEchoHandler struct {
	logger *xlogger.Logger
	status *usecase.Status
}

func NewTradingEchoHandler(logger *xlogger.Logger, status *usecase.Status) *TradingEchoHandler {
	return &TradingEchoHandler{logger: logger, status: status}
}

func (h *TradingEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/features", h.Features)
	g.GET("/signal", h.Signal)
	g.GET("/position", h.Position)
	g.GET("/trades", h.Trades)
}

func (h *TradingEchoHandler) Features(c echo.Context) error {
	req := &models.FeaturesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.status.Features(c.Request().Context(), req.N)
	if err != nil {
		h.logger.Error("features usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, rows)
}

func (h *TradingEchoHandler) Signal(c echo.Context) error {
	res, err := h.status.Signal(c.Request().Context())
	if err != nil {
		h.logger.Error("signal usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *TradingEchoHandler) Position(c echo.Context) error {
	res, err := h.status.Position(c.Request().Context())
	if err != nil {
		h.logger.Error("position usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *TradingEchoHandler) Trades(c echo.Context) error {
	req := &models.TradesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from := xhttp.ParseTimeDefault(req.From, time.Time{})
	to := xhttp.ParseTimeDefault(req.To, time.Now().UTC())

	res, err := h.status.Trades(c.Request().Context(), from, to, req.Limit)
	if err != nil {
		h.logger.Error("trades usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
