package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tecnomade/clouget-pos/internal/cashsession"
	cashsessiondomain "github.com/tecnomade/clouget-pos/internal/cashsession/domain"
	"github.com/tecnomade/clouget-pos/internal/config"
	"github.com/tecnomade/clouget-pos/internal/creditnote"
	creditnotedomain "github.com/tecnomade/clouget-pos/internal/creditnote/domain"
	"github.com/tecnomade/clouget-pos/internal/customer"
	customerdomain "github.com/tecnomade/clouget-pos/internal/customer/domain"
	"github.com/tecnomade/clouget-pos/internal/events"
	"github.com/tecnomade/clouget-pos/internal/expense"
	expensedomain "github.com/tecnomade/clouget-pos/internal/expense/domain"
	"github.com/tecnomade/clouget-pos/internal/fiscal"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	"github.com/tecnomade/clouget-pos/internal/notification"
	notificationdomain "github.com/tecnomade/clouget-pos/internal/notification/domain"
	obsmetrics "github.com/tecnomade/clouget-pos/internal/observability/metrics"
	"github.com/tecnomade/clouget-pos/internal/pricelist"
	pricelistdomain "github.com/tecnomade/clouget-pos/internal/pricelist/domain"
	"github.com/tecnomade/clouget-pos/internal/product"
	productdomain "github.com/tecnomade/clouget-pos/internal/product/domain"
	"github.com/tecnomade/clouget-pos/internal/providers"
	"github.com/tecnomade/clouget-pos/internal/providers/pdf"
	"github.com/tecnomade/clouget-pos/internal/sale"
	saledomain "github.com/tecnomade/clouget-pos/internal/sale/domain"
	"github.com/tecnomade/clouget-pos/internal/scheduler"
	"github.com/tecnomade/clouget-pos/internal/subscription"
	subscriptiondomain "github.com/tecnomade/clouget-pos/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	events.Module,
	providers.Module,
	customer.Module,
	product.Module,
	pricelist.Module,
	cashsession.Module,
	expense.Module,
	sale.Module,
	subscription.Module,
	fiscal.Module,
	creditnote.Module,
	notification.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(obsmetrics.HTTP().GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
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
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	customerSvc     customerdomain.Service
	productSvc      productdomain.Service
	priceListSvc    pricelistdomain.Service
	cashSessionSvc  cashsessiondomain.Service
	expenseSvc      expensedomain.Service
	saleSvc         saledomain.Service
	fiscalSvc       fiscaldomain.Service
	creditNoteSvc   creditnotedomain.Service
	subscriptionSvc subscriptiondomain.Service
	notificationSvc notificationdomain.Service
	pdfProvider     pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	CustomerSvc     customerdomain.Service
	ProductSvc      productdomain.Service
	PriceListSvc    pricelistdomain.Service
	CashSessionSvc  cashsessiondomain.Service
	ExpenseSvc      expensedomain.Service
	SaleSvc         saledomain.Service
	FiscalSvc       fiscaldomain.Service
	CreditNoteSvc   creditnotedomain.Service
	SubscriptionSvc subscriptiondomain.Service
	NotificationSvc notificationdomain.Service
	PDFProvider     pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("server"),
		customerSvc:     p.CustomerSvc,
		productSvc:      p.ProductSvc,
		priceListSvc:    p.PriceListSvc,
		cashSessionSvc:  p.CashSessionSvc,
		expenseSvc:      p.ExpenseSvc,
		saleSvc:         p.SaleSvc,
		fiscalSvc:       p.FiscalSvc,
		creditNoteSvc:   p.CreditNoteSvc,
		subscriptionSvc: p.SubscriptionSvc,
		notificationSvc: p.NotificationSvc,
		pdfProvider:     p.PDFProvider,
	}

	svc.registerRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/v1")

	customers := api.Group("/customers")
	{
		customers.POST("", s.CreateCustomer)
		customers.GET("", s.ListCustomers)
		customers.GET("/:id", s.GetCustomerByID)
		customers.PUT("/:id", s.UpdateCustomer)
		customers.PUT("/:id/price-list", s.AssignCustomerPriceList)
	}

	products := api.Group("/products")
	{
		products.POST("", s.CreateProduct)
		products.GET("", s.ListProducts)
		products.GET("/:id", s.GetProduct)
		products.PUT("/:id", s.UpdateProduct)
		products.POST("/:id/archive", s.ArchiveProduct)
		products.POST("/:id/stock", s.AdjustProductStock)
	}

	priceLists := api.Group("/price-lists")
	{
		priceLists.POST("", s.CreatePriceList)
		priceLists.GET("", s.ListPriceLists)
		priceLists.GET("/:id", s.GetPriceList)
		priceLists.PUT("/:id/default", s.SetDefaultPriceList)
		priceLists.GET("/:id/prices", s.ListPriceListPrices)
		priceLists.PUT("/:id/prices", s.SetPriceListPrice)
		priceLists.DELETE("/:id/prices/:productId", s.RemovePriceListPrice)
	}
	api.GET("/prices/resolve", s.ResolvePrice)
	api.POST("/prices/resolve-cart", s.ResolveCartPrices)

	sales := api.Group("/sales")
	{
		sales.POST("", s.Checkout)
		sales.GET("", s.ListSales)
		sales.GET("/:id", s.GetSale)
		sales.POST("/:id/void", s.VoidSale)
		sales.GET("/:id/document.pdf", s.SaleDocumentPDF)
		sales.GET("/:id/credit-note", s.GetCreditNoteBySale)
	}

	creditNotes := api.Group("/credit-notes")
	{
		creditNotes.POST("", s.CreateCreditNote)
		creditNotes.GET("", s.ListCreditNotes)
		creditNotes.GET("/:id", s.GetCreditNote)
		creditNotes.GET("/:id/brackets", s.GetCreditNoteBrackets)
	}

	cashSessions := api.Group("/cash-sessions")
	{
		cashSessions.POST("", s.OpenCashSession)
		cashSessions.GET("", s.ListCashSessions)
		cashSessions.GET("/current", s.CurrentCashSession)
		cashSessions.GET("/:id", s.GetCashSession)
		cashSessions.POST("/:id/close", s.CloseCashSession)
		cashSessions.GET("/:id/summary", s.CashSessionSummary)
		cashSessions.GET("/:id/expenses", s.ListSessionExpenses)
	}
	api.POST("/expenses", s.RegisterExpense)

	fiscalGroup := api.Group("/fiscal")
	{
		fiscalGroup.POST("/invoices/:id/emit", s.EmitInvoice)
		fiscalGroup.POST("/credit-notes/:id/emit", s.EmitCreditNote)
		fiscalGroup.GET("/status", s.FiscalStatus)
		fiscalGroup.GET("/settings", s.GetFiscalSettings)
		fiscalGroup.PUT("/settings", s.UpdateFiscalSettings)
		fiscalGroup.PUT("/environment", s.SetFiscalEnvironment)
		fiscalGroup.POST("/environment/confirm", s.ConfirmFiscalEnvironment)
		fiscalGroup.POST("/certificate", s.UploadFiscalCertificate)
	}

	subscriptionGroup := api.Group("/subscription")
	{
		subscriptionGroup.GET("", s.SubscriptionState)
		subscriptionGroup.POST("/validate", s.ValidateSubscription)
	}

	notifications := api.Group("/notifications")
	{
		notifications.POST("/send", s.SendNotification)
		notifications.GET("", s.ListNotifications)
		notifications.GET("/pending", s.ListPendingNotifications)
	}
}
