package api

import (
	cron "github.com/chainvoice/chainvoice/internal/api/cron"
	v1 "github.com/chainvoice/chainvoice/internal/api/v1"
	"github.com/chainvoice/chainvoice/internal/config"
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Document      *v1.DocumentHandler
	Ledger        *v1.LedgerHandler
	IntegrityCron *cron.IntegrityCronHandler
	BillingCron   *cron.BillingCronHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Tenant-facing routes require a pre-authenticated actor
	v1Group := router.Group("/v1", middleware.GatewayAuthMiddleware(log))
	registerV1Routes(v1Group, handlers)

	// Scheduler-facing routes; exposed on an internal network only
	cronGroup := router.Group("/cron")
	registerCronRoutes(cronGroup, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	companies := router.Group("/companies/:company_id")
	{
		documents := companies.Group("/documents")
		{
			documents.POST("", handlers.Document.CreateDocument)
			documents.GET("", handlers.Document.ListDocuments)
			documents.GET("/:id", handlers.Document.GetDocument)
			documents.POST("/:id/void", handlers.Document.VoidDocument)
			documents.POST("/:id/issue", handlers.Ledger.IssueDocument)
		}

		ledger := companies.Group("/ledger")
		{
			ledger.GET("/verify", handlers.Ledger.VerifyChain)
		}
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	router.POST("/integrity/sweep", handlers.IntegrityCron.RunIntegritySweep)
	router.POST("/billing/enforce", handlers.BillingCron.EnforceBilling)
}
