package api

import (
	"time"

	models "SignalFuse/internal/domain/models"
	domrepo "SignalFuse/internal/domain/repository"
	"SignalFuse/internal/usecase"
	xhttp "SignalFuse/pkg/http"
	xlogger "SignalFuse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// EnsembleHandler exposes the analysis ensemble over HTTP.
type EnsembleHandler struct {
	logger    *xlogger.Logger
	ensemble  *usecase.Ensemble
	trend     *usecase.TrendSource
	onchain   *usecase.OnChainSource
	sentiment *usecase.SentimentSource
	market    domrepo.MarketData
	collector *usecase.PriceCollector
	store     domrepo.AnalysisStore
}

func NewEnsembleHandler(
	logger *xlogger.Logger,
	ensemble *usecase.Ensemble,
	trend *usecase.TrendSource,
	onchain *usecase.OnChainSource,
	sentiment *usecase.SentimentSource,
	market domrepo.MarketData,
	collector *usecase.PriceCollector,
	store domrepo.AnalysisStore,
) *EnsembleHandler {
	return &EnsembleHandler{
		logger:    logger,
		ensemble:  ensemble,
		trend:     trend,
		onchain:   onchain,
		sentiment: sentiment,
		market:    market,
		collector: collector,
		store:     store,
	}
}

func (h *EnsembleHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.POST("/analysis", h.Analyze)
	g.DELETE("/analysis", h.InvalidateAnalysis)
	g.GET("/trend", h.Trend)
	g.GET("/onchain", h.OnChain)
	g.GET("/sentiment", h.Sentiment)
	g.GET("/price", h.Price)
	g.GET("/history", h.History)
}

func (h *EnsembleHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.ensemble.Analyze(c.Request().Context(), req.Snapshot())
	if err != nil {
		h.logger.Error("analysis usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// InvalidateAnalysis drops cached consensus for a symbol so the next
// analysis recomputes from live data.
func (h *EnsembleHandler) InvalidateAnalysis(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.ensemble.Invalidate(c.Request().Context(), req.Symbol); err != nil {
		h.logger.Error("analysis invalidation error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"symbol": req.Symbol, "status": "invalidated"})
}

func (h *EnsembleHandler) Trend(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.trend.Analyze(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("trend usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EnsembleHandler) OnChain(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.onchain.Metrics(c.Request().Context(), req.Symbol))
}

func (h *EnsembleHandler) Sentiment(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.sentiment.Aggregate(c.Request().Context(), req.Symbol))
}

type priceResponse struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Price serves the live stream price when available and falls back to
// the REST ticker.
func (h *EnsembleHandler) Price(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if h.collector != nil {
		if tick, ok := h.collector.LatestTick(req.Symbol); ok {
			return xhttp.SuccessResponse(c, priceResponse{
				Symbol:    req.Symbol,
				Price:     tick.Price,
				Source:    "stream",
				Timestamp: time.Unix(tick.Timestamp, 0),
			})
		}
	}

	price, err := h.market.CurrentPrice(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("price lookup error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, priceResponse{
		Symbol:    req.Symbol,
		Price:     price,
		Source:    "rest",
		Timestamp: time.Now(),
	})
}

func (h *EnsembleHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.ensemble.History(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

type healthResponse struct {
	Status  string          `json:"status"`
	Checks  map[string]bool `json:"checks"`
	Stream  bool            `json:"stream"`
	Version string          `json:"version,omitempty"`
}

func (h *EnsembleHandler) Health(c echo.Context) error {
	checks := map[string]bool{}
	if h.store != nil {
		checks["clickhouse"] = h.store.Health(c.Request().Context()) == nil
	}

	streamUp := h.collector != nil && h.collector.IsConnected()
	status := "ok"
	for _, ok := range checks {
		if !ok {
			status = "degraded"
		}
	}
	return xhttp.SuccessResponse(c, healthResponse{
		Status: status,
		Checks: checks,
		Stream: streamUp,
	})
}
