package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"creatorpay/internal/auth"
	"creatorpay/internal/config"
	"creatorpay/internal/ledger"
	"creatorpay/internal/payout"
	"creatorpay/internal/referral"
)

type Server struct {
	router *gin.Engine
	config *config.Config
	http   *http.Server
}

func New(
	cfg *config.Config,
	ledgerHandler *ledger.Handler,
	payoutHandler *payout.Handler,
	referralHandler *referral.Handler,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/earnings", ledgerHandler.GetEarningsSummary)
		protected.GET("/balance", ledgerHandler.GetAvailableBalance)
		protected.POST("/migration", ledgerHandler.TriggerMigration)
		protected.POST("/processor/link", ledgerHandler.LinkProcessorAccount)

		protected.POST("/payouts", payoutHandler.RequestPayout)
		protected.GET("/payouts", payoutHandler.ListPayouts)

		protected.POST("/referrals/sync", referralHandler.TriggerSync)
		protected.GET("/referrals", referralHandler.ListRecords)
	}

	return &Server{
		router: router,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
