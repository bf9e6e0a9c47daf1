package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/netbill/internal/auth"
	authdomain "github.com/smallbiznis/netbill/internal/auth/domain"
	"github.com/smallbiznis/netbill/internal/catalog"
	catalogdomain "github.com/smallbiznis/netbill/internal/catalog/domain"
	"github.com/smallbiznis/netbill/internal/config"
	"github.com/smallbiznis/netbill/internal/customer"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	"github.com/smallbiznis/netbill/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/netbill/internal/dashboard/domain"
	"github.com/smallbiznis/netbill/internal/invoice"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	"github.com/smallbiznis/netbill/internal/observability"
	obslogger "github.com/smallbiznis/netbill/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/netbill/internal/observability/metrics"
	obstracing "github.com/smallbiznis/netbill/internal/observability/tracing"
	"github.com/smallbiznis/netbill/internal/payment"
	paymentdomain "github.com/smallbiznis/netbill/internal/payment/domain"
	"github.com/smallbiznis/netbill/internal/sequence"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	sequence.Module,
	auth.Module,
	catalog.Module,
	customer.Module,
	invoice.Module,
	payment.Module,
	dashboard.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, tracer *obstracing.Provider) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(tracer))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, tracer *obstracing.Provider) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, tracer)
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
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	authSvc      authdomain.Service
	customerSvc  customerdomain.Service
	packageSvc   catalogdomain.Service
	invoiceSvc   invoicedomain.Service
	paymentSvc   paymentdomain.Service
	dashboardSvc dashboarddomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	AuthSvc      authdomain.Service
	CustomerSvc  customerdomain.Service
	PackageSvc   catalogdomain.Service
	InvoiceSvc   invoicedomain.Service
	PaymentSvc   paymentdomain.Service
	DashboardSvc dashboarddomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		authSvc:      p.AuthSvc,
		customerSvc:  p.CustomerSvc,
		packageSvc:   p.PackageSvc,
		invoiceSvc:   p.InvoiceSvc,
		paymentSvc:   p.PaymentSvc,
		dashboardSvc: p.DashboardSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.POST("/auth/login", s.Login)

	api.Use(s.AuthRequired())

	api.GET("/auth/me", s.Me)

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/count", s.CountCustomers)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PUT("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)
	api.POST("/customers/:id/suspend", s.SuspendCustomer)
	api.POST("/customers/:id/activate", s.ActivateCustomer)

	// -------- Packages --------
	api.GET("/packages", s.ListPackages)
	api.POST("/packages", s.CreatePackage)
	api.GET("/packages/code/:code", s.GetPackageByCode)
	api.GET("/packages/:id", s.GetPackageByID)
	api.PUT("/packages/:id", s.UpdatePackage)
	api.DELETE("/packages/:id", s.DeletePackage)
	api.POST("/packages/:id/toggle", s.TogglePackage)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/count", s.CountInvoices)
	api.GET("/invoices/overdue", s.ListOverdueInvoices)
	api.POST("/invoices/generate", s.GenerateInvoice)
	api.POST("/invoices/generate-batch", s.GenerateInvoiceBatch)
	api.POST("/invoices/check-overdue", s.CheckOverdueInvoices)
	api.GET("/invoices/number/:number", s.GetInvoiceByNumber)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.PUT("/invoices/:id", s.UpdateInvoice)
	api.POST("/invoices/:id/cancel", s.CancelInvoice)
	api.POST("/invoices/:id/mark-paid", s.MarkInvoicePaid)

	// -------- Payments --------
	api.GET("/payments", s.ListPayments)
	api.POST("/payments", s.CreatePayment)
	api.GET("/payments/count", s.CountPayments)
	api.GET("/payments/number/:number", s.GetPaymentByNumber)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.PUT("/payments/:id", s.UpdatePayment)
	api.POST("/payments/:id/verify", s.VerifyPayment)
	api.POST("/payments/:id/reject", s.RejectPayment)
	api.POST("/payments/:id/cancel", s.CancelPayment)

	// -------- Dashboard --------
	api.GET("/dashboard/stats", s.GetDashboardStats)
	api.GET("/dashboard/revenue-chart", s.GetRevenueChart)
	api.GET("/dashboard/customer-growth", s.GetCustomerGrowth)
	api.GET("/dashboard/package-distribution", s.GetPackageDistribution)
	api.GET("/dashboard/recent-activities", s.GetRecentActivities)
	api.GET("/dashboard/overdue-summary", s.GetOverdueSummary)
}
