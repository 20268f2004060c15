package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trading-backend/src/credentials"
	"trading-backend/src/helpers"
	"trading-backend/src/logger"
	"trading-backend/src/market"
	"trading-backend/src/models"
	"trading-backend/src/orders"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	Market   *market.MarketService
	Orders   *orders.Gateway
	Sessions *credentials.SessionService

	engine *gin.Engine
	srv    *http.Server
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, svc *market.MarketService, gw *orders.Gateway, sessions *credentials.SessionService, logger *logger.Logger) *APIServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:   cfg,
		Logger:   logger,
		Market:   svc,
		Orders:   gw,
		Sessions: sessions,
		engine:   gin.New(),
	}

	s.engine.Use(gin.Recovery(), s.requestID(), s.cors())
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

// requestID tags every request with an id, reusing the caller's when sent.
func (s *APIServer) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)

		start := time.Now()
		c.Next()
		s.Logger.Info("%s %s %d %s [%s]", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), id)
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) cors() gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(s.Config.CorsOrigins))
	wildcard := false
	for _, o := range s.Config.CorsOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			wildcard = true
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if _, ok := allowed[origin]; ok || (wildcard && origin != "") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	s.engine.GET("/api/health", s.getHealth)

	v1 := s.engine.Group("/api/v1")

	mkt := v1.Group("/market")
	mkt.GET("/instruments", s.getInstruments)
	mkt.GET("/scales", s.getScales)
	mkt.GET("/strategies", s.getStrategies)
	mkt.GET("/historical-data", s.getHistoricalData)
	mkt.GET("/nifty50", s.getSegment(models.SegmentNifty50))
	mkt.GET("/banknifty", s.getSegment(models.SegmentBankNifty))
	mkt.GET("/categories", s.getCategories)
	mkt.GET("/positions", s.getPositions)
	mkt.POST("/orders", s.postOrder)

	zerodha := v1.Group("/zerodha")
	zerodha.GET("/login-url", s.getLoginURL)
	zerodha.POST("/session", s.postSession)
}

// Handler exposes the router.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

// writeError is the one place errors become HTTP responses.
func (s *APIServer) writeError(c *gin.Context, err error) {
	status := helpers.StatusCode(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.Logger.Debug("%s %s rejected: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": helpers.PublicMessage(err)})
}
