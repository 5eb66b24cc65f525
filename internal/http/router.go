package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-inventory-api/internal/config"
	"github.com/iyhunko/product-inventory-api/internal/http/controller"
	"github.com/iyhunko/product-inventory-api/internal/http/middleware"
)

func InitRouter(conf *config.Config, db middleware.ClientProvider, server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController) *gin.Engine {
	server.Use(
		middleware.RequestID(),
		middleware.Logger(),
		// Apply recovery middleware globally to prevent panics from crashing the server
		middleware.Recovery(),
		middleware.CORS(conf.CORS.AllowedOrigins),
	)

	server.GET("/", ctr.Welcome)
	server.GET("/healthz", ctr.Health)

	products := server.Group("/products")
	if conf.IsProduction() {
		// the process starts without a connection and acquires it on the first request
		products.Use(middleware.Database(db))
	}
	{
		products.GET("", productCtr.ListProducts)
		products.GET("/:id", productCtr.GetProduct)
		products.POST("", productCtr.CreateProduct)
		products.PUT("/:id", productCtr.UpdateProduct)
		products.DELETE("/:id", productCtr.DeleteProduct)
	}

	return server
}
