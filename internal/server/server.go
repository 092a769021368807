// Package server exposes the HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/smallbiznis/faktur/internal/account"
	accountdomain "github.com/smallbiznis/faktur/internal/account/domain"
	"github.com/smallbiznis/faktur/internal/account/session"
	"github.com/smallbiznis/faktur/internal/config"
	"github.com/smallbiznis/faktur/internal/invoice"
	invoicedomain "github.com/smallbiznis/faktur/internal/invoice/domain"
	"github.com/smallbiznis/faktur/internal/notification"
	"github.com/smallbiznis/faktur/internal/observability"
	obsmiddleware "github.com/smallbiznis/faktur/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/faktur/internal/observability/metrics"
	obstracing "github.com/smallbiznis/faktur/internal/observability/tracing"
	"github.com/smallbiznis/faktur/internal/providers/email"
	"github.com/smallbiznis/faktur/internal/providers/pdf"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	account.Module,
	email.Module,
	pdf.Module,
	notification.Module,
	invoice.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	sessions      *session.Manager
	accountSvc    accountdomain.Service
	invoiceSvc    invoicedomain.Service
	pdfSvc        pdf.Provider
	obsMetrics    *obsmetrics.Metrics
	publicLimiter *rateLimiter
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Sessions   *session.Manager
	AccountSvc accountdomain.Service
	InvoiceSvc invoicedomain.Service
	PDFSvc     pdf.Provider
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		sessions:      p.Sessions,
		accountSvc:    p.AccountSvc,
		invoiceSvc:    p.InvoiceSvc,
		pdfSvc:        p.PDFSvc,
		obsMetrics:    p.ObsMetrics,
		publicLimiter: newRateLimiter(30, time.Minute),
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()
	s.registerPublicRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.WebAuthRequired(), s.Me)
	auth.POST("/onboarding", s.WebAuthRequired(), s.Onboard)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.WebAuthRequired())

	api.GET("/dashboard", s.GetDashboard)

	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/:invoiceId", s.GetInvoiceByID)
	api.PUT("/invoices/:invoiceId", s.UpdateInvoice)
	api.DELETE("/invoices/:invoiceId", s.DeleteInvoice)
	api.POST("/invoices/:invoiceId/paid", s.MarkInvoicePaid)
	api.POST("/invoices/:invoiceId/send", s.SendInvoice)

	api.POST("/email/:invoiceId", s.SendInvoiceReminder)
}

// registerPublicRoutes holds the endpoints a client can open from an
// emailed link without an account.
func (s *Server) registerPublicRoutes() {
	s.engine.GET("/api/invoice/:invoiceId", s.PublicRateLimit(s.publicLimiter), s.DownloadInvoicePDF)
}
