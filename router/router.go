package router

import (
	"time"

	"finbook/api"
	"finbook/config"
	_ "finbook/docs"
	"finbook/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		passwordResetHandler := api.NewPasswordResetHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			// 登录接口限流，防止暴力破解
			auth.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)

			// 密码重置（无需登录）
			auth.POST("/request-reset", middleware.RateLimit(3, 10*time.Minute, "重置请求过于频繁，请稍后再试"), passwordResetHandler.RequestPasswordReset)
			auth.GET("/verify-reset-token", passwordResetHandler.VerifyResetToken)
			auth.POST("/reset-password", passwordResetHandler.ResetPassword)
		}

		// 开放银行 Webhook（聚合服务回调，签名校验代替登录）
		openFinanceHandler := api.NewOpenFinanceHandler()
		v1.POST("/openfinance/webhook", openFinanceHandler.Webhook)

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 交易记录相关
			transactionHandler := api.NewTransactionHandler()
			transactions := authorized.Group("/transactions")
			{
				transactions.POST("", transactionHandler.Create)
				transactions.GET("", transactionHandler.List)
				transactions.GET("/statistics", transactionHandler.GetStatistics)
				transactions.GET("/detailed-statistics", transactionHandler.GetDetailedStatistics)
				transactions.GET("/:id", transactionHandler.Get)
				transactions.PUT("/:id", transactionHandler.Update)
				transactions.DELETE("/:id", transactionHandler.Delete)
			}

			// 消费类别相关
			categoryHandler := api.NewCategoryHandler()
			categories := authorized.Group("/categories")
			{
				categories.GET("", categoryHandler.List)
				categories.POST("", categoryHandler.Create)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			// 分类规则与智能建议
			categorizationHandler := api.NewCategorizationHandler()
			categorization := authorized.Group("/categorization")
			{
				categorization.POST("/suggest", categorizationHandler.Suggest)
				categorization.GET("/rules", categorizationHandler.ListRules)
				categorization.POST("/rules", categorizationHandler.CreateRule)
				categorization.PUT("/rules/:id", categorizationHandler.UpdateRule)
				categorization.DELETE("/rules/:id", categorizationHandler.DeleteRule)
			}

			// 银行账户相关
			accountHandler := api.NewAccountHandler()
			accounts := authorized.Group("/accounts")
			{
				accounts.POST("", accountHandler.Create)
				accounts.GET("", accountHandler.List)
				accounts.GET("/:id", accountHandler.Get)
				accounts.PUT("/:id", accountHandler.Update)
				accounts.DELETE("/:id", accountHandler.Delete)
			}

			// 信用卡相关
			cardHandler := api.NewCardHandler()
			cards := authorized.Group("/cards")
			{
				cards.POST("", cardHandler.Create)
				cards.GET("", cardHandler.List)
				cards.GET("/:id", cardHandler.Get)
				cards.PUT("/:id", cardHandler.Update)
				cards.DELETE("/:id", cardHandler.Delete)
			}

			// 投资相关
			investmentHandler := api.NewInvestmentHandler()
			investments := authorized.Group("/investments")
			{
				investments.POST("", investmentHandler.Create)
				investments.GET("", investmentHandler.List)
				investments.POST("/projection", investmentHandler.Project)
				investments.PUT("/:id", investmentHandler.Update)
				investments.DELETE("/:id", investmentHandler.Delete)
			}

			// 导出相关
			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
			}

			// 开放银行相关
			openfinance := authorized.Group("/openfinance")
			{
				openfinance.POST("/connect-token", openFinanceHandler.CreateConnectToken)
				openfinance.GET("/connections", openFinanceHandler.ListConnections)
				openfinance.POST("/connections", openFinanceHandler.CreateConnection)
				openfinance.DELETE("/connections/:id", openFinanceHandler.DeleteConnection)
				openfinance.POST("/sync", openFinanceHandler.Sync)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
