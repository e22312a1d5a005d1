package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	models "CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/usecase"
	xhttp "CoinPulse/pkg/http"
	xlogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/util"
)

// PredictionsHandler serves the prediction API on Echo.
type PredictionsHandler struct {
	logger *xlogger.Logger
	gen    *usecase.Generator
}

func NewPredictionsHandler(logger *xlogger.Logger, gen *usecase.Generator) *PredictionsHandler {
	return &PredictionsHandler{logger: logger, gen: gen}
}

func (h *PredictionsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/predictions", h.Create)
	g.GET("/predictions", h.List)
	g.GET("/crypto/price/:symbol", h.Price)
}

// Create runs the manual generation path. The stake is charged against the
// user's free prediction quota before any pipeline work happens.
func (h *PredictionsHandler) Create(c echo.Context) error {
	req := &models.CreatePredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p, err := h.gen.Generate(c.Request().Context(), usecase.GenerateParams{
		UserID:    req.UserID,
		Symbol:    req.Symbol,
		Timeframe: domrepo.Timeframe(req.Timeframe),
		Mode:      usecase.ModeManual,
		Stake:     req.StakeAmount,
	})
	if err != nil {
		if err == domrepo.ErrQuotaExceeded {
			return xhttp.AppErrorResponse(c, xhttp.NewAppError(
				"ERR_QUOTA_EXCEEDED", "stake_amount",
				"not enough free predictions", http.StatusPaymentRequired,
			))
		}
		h.logger.Error("create prediction usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, p)
}

// List returns the user's predictions newest first, optionally narrowed to a
// created_at window via from/to query params (RFC3339 or unix seconds).
func (h *PredictionsHandler) List(c echo.Context) error {
	req := &models.ListPredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	from := util.ParseTimeDefault(c.QueryParam("from"), time.Time{})
	to := util.ParseTimeDefault(c.QueryParam("to"), time.Time{})

	preds, err := h.gen.ListByUser(c.Request().Context(), req.UserID, from, to, req.Limit)
	if err != nil {
		h.logger.Error("list predictions usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, preds, int64(len(preds)))
}

// Price returns the current price of a symbol in the requested fiat currency.
func (h *PredictionsHandler) Price(c echo.Context) error {
	req := &models.CurrentPriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("symbol is required"))
	}

	price := h.gen.CurrentPrice(c.Request().Context(), symbol, req.Currency)
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol":   symbol,
		"currency": req.Currency,
		"price":    price,
	})
}
