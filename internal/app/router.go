package app

import (
	"cbt_cms/docs"
	"cbt_cms/internal/config"
	"cbt_cms/internal/middleware"
	"cbt_cms/internal/model"
	"cbt_cms/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.GET("/menu", c.auth.GetMenu)

		registerQuestionRoutes(authGroup, c)
		registerTryoutRoutes(authGroup, c)
	}
}

// 题库与题目编辑：仅 superadmin
func registerQuestionRoutes(rg *gin.RouterGroup, c *controllers) {
	bank := rg.Group("")
	bank.Use(middleware.RoleMiddleware(model.RoleSuperadmin))
	{
		bank.GET("/question-categories", c.question.ListCategories)
		bank.GET("/questions", c.question.ListQuestions)
		bank.GET("/questions/import-template", c.question.ImportTemplate)
		bank.POST("/questions/import", c.question.ImportQuestions)
		bank.POST("/questions/export", c.question.ExportQuestions)
		bank.GET("/questions/:id", c.question.GetQuestion)
		bank.DELETE("/questions/:id", c.question.DeleteQuestion)

		lists := bank.Group("/questions/lists")
		{
			lists.POST("", c.question.OpenList)
			lists.GET("/:lid", c.question.GetList)
			lists.PATCH("/:lid", c.question.UpdateList)
			lists.DELETE("/:lid", c.question.CloseList)
		}

		editor := bank.Group("/questions/editor")
		{
			editor.POST("", c.editor.Open)
			editor.GET("/:sid", c.editor.Get)
			editor.PATCH("/:sid", c.editor.Apply)
			editor.DELETE("/:sid", c.editor.Close)
			editor.POST("/:sid/preview", c.editor.Preview)
			editor.POST("/:sid/submit", c.editor.Submit)
		}

		bank.POST("/uploads", c.upload.Upload)
		bank.GET("/transfers", c.transfer.ListTransfers)
		bank.GET("/transfers/:id", c.transfer.GetTransfer)
		bank.GET("/tests/supervisors", c.tryout.ListSupervisors)
	}
}

// 测验管理：superadmin 与 pengawas，pengawas 只能操作自己的测验
func registerTryoutRoutes(rg *gin.RouterGroup, c *controllers) {
	tests := rg.Group("")
	tests.Use(middleware.RoleMiddleware(model.RoleSuperadmin, model.RolePengawas))
	{
		tests.GET("/tests", c.tryout.ListTests)
		tests.GET("/tests/defaults", c.tryout.DefaultForm)
		tests.POST("/tests", c.tryout.CreateTest)
		tests.PUT("/tests/:id", c.tryout.UpdateTest)
		tests.DELETE("/tests/:id", c.tryout.DeleteTest)
		tests.POST("/tests/:id/export", c.tryout.ExportResults)
		tests.GET("/tests/:id/export/pdf", c.tryout.ExportPDF)
		tests.POST("/tests/:id/sections/:sectionId/questions", c.tryout.AttachQuestions)
		tests.GET("/schools", c.tryout.ListSchools)
	}
}
