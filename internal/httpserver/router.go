package httpserver

import (
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, allowedOrigins []string) (*gin.Engine, error) {
	if deps.AuthSvc == nil || deps.CategorySvc == nil || deps.ProductSvc == nil || deps.CheckoutSvc == nil || deps.Orders == nil {
		return nil, errors.New("httpserver: missing dependencies")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", registerHandler(deps.AuthSvc))
		auth.POST("/login", loginHandler(deps.AuthSvc))
		auth.POST("/forgot-password", forgotPasswordHandler(deps.AuthSvc))
		auth.GET("/user-auth", requireSignIn(deps.AuthSvc), authPingHandler)
		auth.GET("/admin-auth", requireSignIn(deps.AuthSvc), isAdmin(), authPingHandler)
		auth.PUT("/profile", requireSignIn(deps.AuthSvc), updateProfileHandler(deps.AuthSvc))
		auth.GET("/orders", requireSignIn(deps.AuthSvc), listOrdersHandler(deps.Orders))
		auth.GET("/all-orders", requireSignIn(deps.AuthSvc), isAdmin(), listAllOrdersHandler(deps.Orders))
		auth.PUT("/order-status/:orderId", requireSignIn(deps.AuthSvc), isAdmin(), orderStatusHandler(deps.Orders))
	}

	category := api.Group("/category")
	{
		category.POST("/create-category", requireSignIn(deps.AuthSvc), isAdmin(), createCategoryHandler(deps.CategorySvc))
		category.PUT("/update-category/:id", requireSignIn(deps.AuthSvc), isAdmin(), updateCategoryHandler(deps.CategorySvc))
		category.GET("/get-all", listCategoriesHandler(deps.CategorySvc))
		category.GET("/get-one/:slug", getCategoryHandler(deps.CategorySvc))
		category.DELETE("/delete/:id", requireSignIn(deps.AuthSvc), isAdmin(), deleteCategoryHandler(deps.CategorySvc))
	}

	product := api.Group("/product")
	{
		product.POST("/create", requireSignIn(deps.AuthSvc), isAdmin(), createProductHandler(deps.ProductSvc))
		product.PUT("/update/:id", requireSignIn(deps.AuthSvc), isAdmin(), updateProductHandler(deps.ProductSvc))
		product.DELETE("/delete/:id", requireSignIn(deps.AuthSvc), isAdmin(), deleteProductHandler(deps.ProductSvc))
		product.GET("/get-all", listProductsHandler(deps.ProductSvc))
		product.GET("/get/:slug", getProductHandler(deps.ProductSvc))
		product.POST("/filters", filterProductsHandler(deps.ProductSvc))
		product.GET("/product-count", productCountHandler(deps.ProductSvc))
		product.GET("/product-list/:page", productListHandler(deps.ProductSvc))
		product.GET("/search/:keyword", searchProductsHandler(deps.ProductSvc))
		product.GET("/related-product/:pid/:cid", relatedProductsHandler(deps.ProductSvc))
		product.GET("/product-category/:slug", productsByCategoryHandler(deps.ProductSvc))
		product.GET("/braintree/token", clientTokenHandler(deps.CheckoutSvc))
		product.POST("/braintree/payment", requireSignIn(deps.AuthSvc), paymentHandler(deps.CheckoutSvc, logger))
	}

	return router, nil
}
