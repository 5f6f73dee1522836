package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/A-San96/c4-final-project/internal/config"
	"github.com/A-San96/c4-final-project/internal/controller"
	"github.com/A-San96/c4-final-project/internal/middleware"
)

// Router builds the HTTP engine for the todo API.
func Router(cfg *config.Config, todos *controller.TodoController) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowOrigins) == 1 && cfg.CORSAllowOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	// Health for load balancers and K8s probes
	router.GET("/health", todos.Health)
	router.GET("/ready", todos.Ready)

	api := router.Group("/todos")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		api.GET("", todos.GetTodos)
		api.POST("", todos.CreateTodo)
		api.PATCH("/:todoId", todos.UpdateTodo)
		api.PUT("/:todoId", todos.UpdateTodo)
		api.DELETE("/:todoId", todos.DeleteTodo)
		api.POST("/:todoId/attachment", todos.GenerateUploadURL)
	}

	return router
}
