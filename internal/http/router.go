package api

import (
	"database/sql"
	"log"
	stdhttp "net/http"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/config"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
	h "github.com/MiltonTSilva/ContasReceber-sub000/internal/http/handlers"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/http/middleware"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/notify"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/repositories"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter monta o engine gin com middlewares, autenticação e as rotas de
// todas as entidades.
func NewRouter(env config.Env, db *sql.DB, hub *notify.Hub) *gin.Engine {
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Metrics(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     env.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	if env.TranslateAPIKey != "" {
		h.SetTranslator(services.NewTranslator(env.TranslateAPIKey, env.TranslateURL))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "rota não encontrada",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	sys := h.System{DB: db}
	auth := h.Auth{DB: db, Secret: []byte(env.JWTSecret)}

	payments := repositories.NewPaymentGateway(db, hub)
	receivables := repositories.NewReceivableGateway(db, hub)
	sales := repositories.NewSaleGateway(db, hub)

	api := r.Group("/api")
	{
		api.GET("/health", sys.Health)
		api.GET("/db-check", sys.DBCheck)

		ag := api.Group("/auth")
		ag.POST("/login", auth.Login)
		ag.POST("/register", auth.Register)
		ag.POST("/reset-password", auth.ResetPassword)

		protected := api.Group("")
		protected.Use(middleware.RequireAuth([]byte(env.JWTSecret)))

		protected.PUT("/auth/profile", auth.UpdateProfile)

		h.Resource[domain.Customer]{Name: "customers", GW: repositories.NewCustomerGateway(db, hub)}.Mount(protected.Group("/customers"))
		h.Resource[domain.Company]{Name: "companies", GW: repositories.NewCompanyGateway(db, hub)}.Mount(protected.Group("/companies"))
		h.Resource[domain.Product]{Name: "products", GW: repositories.NewProductGateway(db, hub)}.Mount(protected.Group("/products"))
		h.Resource[domain.ExpenseType]{Name: "expense-types", GW: repositories.NewExpenseTypeGateway(db, hub)}.Mount(protected.Group("/expense-types"))
		h.Resource[domain.Expense]{Name: "expenses", GW: repositories.NewExpenseGateway(db, hub)}.Mount(protected.Group("/expenses"))
		h.Resource[domain.Payment]{Name: "payments", GW: payments}.Mount(protected.Group("/payments"))
		h.Resource[domain.Receivable]{Name: "receivables", GW: receivables}.Mount(protected.Group("/receivables"))
		h.Resource[domain.Sale]{Name: "sales", GW: sales}.Mount(protected.Group("/sales"))
		h.Resource[domain.User]{Name: "users", GW: repositories.NewUserGateway(db, hub)}.Mount(protected.Group("/users"))

		docs := h.Docs{Receipts: services.ReceiptService{
			Payments:    payments,
			Receivables: receivables,
			Sales:       sales,
		}}
		protected.GET("/payments/:id/receipt", docs.PaymentReceipt)
		protected.GET("/receivables/:id/receipt", docs.ReceivableReceipt)
		protected.GET("/sales/:id/invoice", docs.SaleInvoice)

		protected.GET("/events", h.Events{Hub: hub}.Stream)
	}

	return r
}
