package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"trading-backend/src/helpers"
	"trading-backend/src/models"
	"trading-backend/src/universe"

	"github.com/gin-gonic/gin"
)

type strategy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var strategies = []strategy{
	{ID: "ma_crossover", Name: "Moving Average Crossover"},
	{ID: "rsi_strategy", Name: "RSI Strategy"},
	{ID: "bollinger_bands", Name: "Bollinger Bands"},
}

// Accepted from_date / to_date layouts.
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// -----------------------------------------------------------------------------
// Health
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"broker_configured": s.Market.BrokerConfigured(),
		"authenticated":     s.Market.Authenticated(c.Request.Context()),
		"market_open":       s.Market.MarketOpen(),
	})
}

// -----------------------------------------------------------------------------
// Market
// -----------------------------------------------------------------------------

func (s *APIServer) getInstruments(c *gin.Context) {
	instruments, err := s.Market.Instruments(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, instruments)
}

func (s *APIServer) getScales(c *gin.Context) {
	c.JSON(http.StatusOK, models.Scales)
}

func (s *APIServer) getStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, strategies)
}

func (s *APIServer) getCategories(c *gin.Context) {
	c.JSON(http.StatusOK, universe.Categories())
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHistoricalData(c *gin.Context) {
	token, err := strconv.ParseInt(c.Query("instrument_token"), 10, 64)
	if err != nil || token <= 0 {
		s.writeError(c, helpers.NewBadRequest("instrument_token must be a positive integer", nil))
		return
	}
	scale, ok := models.ParseScale(c.Query("scale"))
	if !ok {
		s.writeError(c, helpers.NewBadRequest("unsupported scale "+c.Query("scale"), nil))
		return
	}

	loc := s.Market.Calendar.Timezone
	from, err := parseDate(c.Query("from_date"), loc)
	if err != nil {
		s.writeError(c, helpers.NewBadRequest("invalid from_date", err))
		return
	}
	to, err := parseDate(c.Query("to_date"), loc)
	if err != nil {
		s.writeError(c, helpers.NewBadRequest("invalid to_date", err))
		return
	}

	candles, err := s.Market.HistoricalData(c.Request.Context(), token, scale, from, to)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, candles)
}

func parseDate(v string, loc *time.Location) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, v, loc)
		if err == nil {
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSegment(segment models.Segment) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := parseRowQuery(c, segment)
		if err != nil {
			s.writeError(c, err)
			return
		}
		page, err := s.Market.BuildRows(c.Request.Context(), q)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// parseRowQuery reads the row query parameters. Empty values take defaults;
// values outside the closed sets are rejected.
func parseRowQuery(c *gin.Context, segment models.Segment) (models.MRowQuery, error) {
	q := models.MRowQuery{
		Segment:  segment,
		Search:   strings.TrimSpace(c.Query("search")),
		Category: strings.TrimSpace(c.Query("category")),
	}

	var ok bool
	if q.Position, ok = models.ParsePositionFilter(c.Query("position")); !ok {
		return q, helpers.NewBadRequest("position must be one of long, short, neutral, open", nil)
	}
	if q.SortBy, ok = models.ParseSortField(c.Query("sort_by")); !ok {
		return q, helpers.NewBadRequest("sort_by must be one of id, name, price, position", nil)
	}
	if q.SortDesc, ok = models.ParseSortDesc(c.Query("sort_dir")); !ok {
		return q, helpers.NewBadRequest("sort_dir must be asc or desc", nil)
	}
	if q.Scale, ok = models.ParseScale(c.Query("scale")); !ok {
		return q, helpers.NewBadRequest("unsupported scale "+c.Query("scale"), nil)
	}

	var err error
	if q.Page, err = intParam(c, "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = intParam(c, "page_size"); err != nil {
		return q, err
	}
	if v := c.Query("include_candles"); v != "" {
		if q.IncludeCandles, err = strconv.ParseBool(v); err != nil {
			return q, helpers.NewBadRequest("include_candles must be a boolean", err)
		}
	}
	return q, nil
}

// intParam returns 0 for an absent parameter.
func intParam(c *gin.Context, name string) (int, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, helpers.NewBadRequest(name+" must be an integer", err)
	}
	return n, nil
}

// -----------------------------------------------------------------------------

func (s *APIServer) getPositions(c *gin.Context) {
	positions, err := s.Market.PositionViews(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, positions)
}

// -----------------------------------------------------------------------------

func (s *APIServer) postOrder(c *gin.Context) {
	var req models.MOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, helpers.NewBadRequest("invalid order body", err))
		return
	}

	res, err := s.Orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// Broker session
// -----------------------------------------------------------------------------

func (s *APIServer) getLoginURL(c *gin.Context) {
	url, err := s.Sessions.LoginURL()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"login_url": url})
}

type sessionRequest struct {
	RequestToken string `json:"request_token"`
}

func (s *APIServer) postSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, helpers.NewBadRequest("invalid session body", err))
		return
	}
	if err := s.Sessions.CreateSession(c.Request.Context(), req.RequestToken); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
