package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inventory-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	adminH *AdminHandler,
	productH *ProductHandler,
	supplierH *SupplierHandler,
	reportH *ReportHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery, CORS y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), cors.Default(), jsonContentTypeMiddleware())

	authRequired := JWTAuthMiddleware(jwtSvc)

	admin := r.Group("/admin")
	admin.POST("/signup", adminH.Signup)
	admin.POST("/signup/verify", adminH.SignupVerify)
	admin.POST("/login", adminH.Login)
	admin.POST("/password-reset/request", adminH.PasswordResetRequest)
	admin.POST("/password-reset/confirm", adminH.PasswordResetConfirm)
	admin.GET("/profile", authRequired, adminH.GetProfile)

	products := r.Group("/products", authRequired)
	products.POST("", productH.AddProduct)
	products.GET("", productH.GetProducts)
	products.GET("/:id", productH.GetProduct)
	products.PUT("/:id", productH.UpdateProduct)
	products.DELETE("/:id", productH.DeleteProduct)
	products.PATCH("/:id/increase", productH.IncreaseStock)
	products.PATCH("/:id/decrease", productH.DecreaseStock)

	suppliers := r.Group("/supplier", authRequired)
	suppliers.POST("", supplierH.AddSupplier)
	suppliers.GET("", supplierH.GetSuppliers)
	suppliers.GET("/:id", supplierH.GetSupplier)
	suppliers.PUT("/:id", supplierH.UpdateSupplier)
	suppliers.DELETE("/:id", supplierH.DeleteSupplier)

	reports := r.Group("/reports", authRequired)
	reports.GET("/stock", reportH.GetLowStock)
	reports.GET("/suppliers", reportH.GetProductsBySupplier)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
