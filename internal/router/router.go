// Package router 提供路由装配
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dyohan9/bothub-engine/internal/handler"
	"github.com/dyohan9/bothub-engine/internal/middleware"
	"github.com/dyohan9/bothub-engine/internal/service"
)

// SetupRouter 装配全部路由
func SetupRouter(services *service.Services, handlers *handler.Handlers) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": services.Config.App.Name,
			"version": services.Config.App.Version,
		})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(services))
	{
		// 认证
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", handlers.Auth.Register)
			authGroup.POST("/login", handlers.Auth.Login)
			authGroup.POST("/refresh", handlers.Auth.RefreshToken)
			authGroup.POST("/password-reset", handlers.Auth.RequestPasswordReset)
			authGroup.POST("/password-reset/confirm", handlers.Auth.ConfirmPasswordReset)

			authGroup.GET("/me", middleware.RequireAuth(services), handlers.Auth.Me)
			authGroup.POST("/change-password", middleware.RequireAuth(services), handlers.Auth.ChangePassword)
		}

		// 数据集仓库；读取接口允许匿名访问，可见性由授权推导决定
		repositories := v1.Group("/repositories")
		{
			repositories.GET("", handlers.Repository.List)
			repositories.POST("", middleware.RequireAuth(services), handlers.Repository.Create)
			repositories.GET("/mine", middleware.RequireAuth(services), handlers.Repository.ListOwn)
			repositories.GET("/lookup/:nickname/:slug", handlers.Repository.GetBySlug)

			repositories.GET("/:id", handlers.Repository.Get)
			repositories.PATCH("/:id", middleware.RequireAuth(services), handlers.Repository.Update)
			repositories.DELETE("/:id", middleware.RequireAuth(services), handlers.Repository.Delete)

			repositories.GET("/:id/languages", handlers.Repository.Languages)
			repositories.GET("/:id/languagesstatus", handlers.Repository.LanguagesStatus)
			repositories.GET("/:id/examples", handlers.Repository.Examples)

			repositories.GET("/:id/authorization", handlers.Repository.Authorization)
			repositories.GET("/:id/authorizations", middleware.RequireAuth(services), handlers.Repository.ListAuthorizations)
			repositories.PUT("/:id/authorizations/:userID", middleware.RequireAuth(services), handlers.Repository.UpdateAuthorizationRole)

			repositories.GET("/:id/versions", handlers.Version.List)
			repositories.GET("/:id/current-version", handlers.Version.Current)
			repositories.GET("/:id/last-trained", handlers.Version.LastTrained)

			repositories.POST("/:id/train", middleware.RequireAuth(services), handlers.Repository.Train)
			repositories.POST("/:id/analyze", handlers.Repository.Analyze)
			repositories.POST("/:id/evaluate", middleware.RequireAuth(services), handlers.Repository.Evaluate)
		}

		// 训练样本与翻译
		examples := v1.Group("/examples")
		{
			examples.POST("", middleware.RequireAuth(services), handlers.Example.Create)
			examples.GET("/:id", handlers.Example.Get)
			examples.DELETE("/:id", middleware.RequireAuth(services), handlers.Example.Delete)
			examples.POST("/:id/translations", middleware.RequireAuth(services), handlers.Example.CreateTranslation)
			examples.GET("/:id/translations", handlers.Example.ListTranslations)
		}

		// 翻译
		translations := v1.Group("/translations")
		{
			translations.GET("/:id", handlers.Example.GetTranslation)
		}

		// 数据集版本；save-training 与 training-data 供 NLP 服务使用
		versions := v1.Group("/versions")
		{
			versions.GET("/:id/training-data", handlers.Version.TrainingData)
			versions.POST("/:id/save-training", handlers.Version.SaveTraining)
			versions.GET("/:id/bot-data", handlers.Version.BotData)
		}
	}

	return r
}
