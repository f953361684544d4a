package router

import (
	"riveredge/internal/handlers"
	"riveredge/internal/middleware"
	"riveredge/internal/services"
	"riveredge/pkg/response"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {

	auth := middleware.NewAuthMiddleware()

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// JWT认证路由（无需认证）
		authHandler := handlers.NewAuthHandler(services.NewAuthService(), services.NewUserService(), services.NewPermissionService())
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)          // 用户登录
			authGroup.POST("/refresh", authHandler.RefreshToken) // 刷新Token

			authGroup.GET("/profile", auth.RequireLogin(), authHandler.Profile)
			authGroup.POST("/logout", auth.RequireLogin(), authHandler.Logout)
			authGroup.GET("/users/:uuid/online", auth.RequireLogin(), auth.RequireTenantAdmin(), authHandler.OnlineStatus)
			authGroup.POST("/users/:uuid/force-logout", auth.RequireLogin(), auth.RequireTenantAdmin(), authHandler.ForceLogout)
		}

		// 租户路由（平台管理员专用）
		tenantHandler := handlers.NewTenantHandler(services.NewTenantService())
		tenants := api.Group("/tenants", auth.RequireLogin(), auth.RequireInfraAdmin())
		{
			tenants.POST("", tenantHandler.Create)
			tenants.GET("", tenantHandler.List)
			tenants.GET("/:uuid", tenantHandler.GetByUUID)
			tenants.PUT("/:uuid", tenantHandler.Update)
			tenants.PUT("/:uuid/status", tenantHandler.SetStatus)
		}

		// 用户路由（添加权限保护）
		userHandler := handlers.NewUserHandler(services.NewUserService())
		users := api.Group("/users", auth.RequireLogin())
		{
			users.POST("", auth.RequirePermission("user:create"), userHandler.Create)
			users.GET("", auth.RequirePermission("user:list"), userHandler.List)
			users.GET("/:uuid", auth.RequirePermission("user:read"), userHandler.GetByUUID)
			users.PUT("/:uuid", auth.RequirePermission("user:update"), userHandler.Update)
			users.DELETE("/:uuid", auth.RequirePermission("user:delete"), userHandler.Delete)

			users.PUT("/:uuid/password", userHandler.ChangePassword)
			users.PUT("/:uuid/roles", auth.RequirePermission("user:assign_role"), userHandler.AssignRoles)
		}

		// 角色路由（添加权限保护）
		roleHandler := handlers.NewRoleHandler(services.NewRoleService())
		roles := api.Group("/roles", auth.RequireLogin())
		{
			roles.POST("", auth.RequirePermission("role:create"), roleHandler.Create)
			roles.GET("", auth.RequirePermission("role:list"), roleHandler.List)
			roles.GET("/:uuid", auth.RequirePermission("role:read"), roleHandler.GetByUUID)
			roles.PUT("/:uuid", auth.RequirePermission("role:update"), roleHandler.Update)
			roles.DELETE("/:uuid", auth.RequirePermission("role:delete"), roleHandler.Delete)

			roles.GET("/:uuid/permissions", auth.RequirePermission("role:read"), roleHandler.GetPermissions)
			roles.PUT("/:uuid/permissions", auth.RequireTenantAdmin(), roleHandler.AssignPermissions)
		}

		// 权限路由
		permissionHandler := handlers.NewPermissionHandler(services.NewPermissionService())
		permissions := api.Group("/permissions", auth.RequireLogin())
		{
			permissions.GET("", permissionHandler.List)
			permissions.GET("/mine", permissionHandler.MyPermissions)
			permissions.POST("", auth.RequireTenantAdmin(), permissionHandler.Create)
			permissions.PUT("/:uuid", auth.RequireTenantAdmin(), permissionHandler.Update)
			permissions.DELETE("/:uuid", auth.RequireTenantAdmin(), permissionHandler.Delete)
		}

		// 部门与岗位路由
		departmentHandler := handlers.NewDepartmentHandler(services.NewDepartmentService(), services.NewPositionService())
		departments := api.Group("/departments", auth.RequireLogin())
		{
			departments.POST("", auth.RequirePermission("department:create"), departmentHandler.Create)
			departments.GET("/tree", auth.RequirePermission("department:list"), departmentHandler.GetTree)
			departments.PUT("/:uuid", auth.RequirePermission("department:update"), departmentHandler.Update)
			departments.DELETE("/:uuid", auth.RequirePermission("department:delete"), departmentHandler.Delete)
		}
		positions := api.Group("/positions", auth.RequireLogin())
		{
			positions.POST("", auth.RequirePermission("position:create"), departmentHandler.CreatePosition)
			positions.GET("", auth.RequirePermission("position:list"), departmentHandler.ListPositions)
			positions.PUT("/:uuid", auth.RequirePermission("position:update"), departmentHandler.UpdatePosition)
			positions.DELETE("/:uuid", auth.RequirePermission("position:delete"), departmentHandler.DeletePosition)
		}

		// 菜单路由
		menuHandler := handlers.NewMenuHandler(services.NewMenuService())
		menus := api.Group("/menus", auth.RequireLogin())
		{
			menus.GET("/tree", menuHandler.GetTree)
			menus.POST("", auth.RequireTenantAdmin(), menuHandler.Create)
			menus.PUT("/:uuid", auth.RequireTenantAdmin(), menuHandler.Update)
			menus.DELETE("/:uuid", auth.RequireTenantAdmin(), menuHandler.Delete)
		}

		// 应用插件路由（租户管理员）
		applicationHandler := handlers.NewApplicationHandler(services.NewApplicationService())
		apps := api.Group("/applications", auth.RequireLogin())
		{
			apps.GET("", applicationHandler.List)
			apps.POST("/scan", auth.RequireTenantAdmin(), applicationHandler.Scan)
			apps.PUT("/:uuid/name", auth.RequireTenantAdmin(), applicationHandler.Rename)
			apps.PUT("/:uuid/order", auth.RequireTenantAdmin(), applicationHandler.Reorder)
			apps.POST("/:uuid/install", auth.RequireTenantAdmin(), applicationHandler.Install)
			apps.POST("/:uuid/uninstall", auth.RequireTenantAdmin(), applicationHandler.Uninstall)
			apps.POST("/:uuid/enable", auth.RequireTenantAdmin(), applicationHandler.Enable)
			apps.POST("/:uuid/disable", auth.RequireTenantAdmin(), applicationHandler.Disable)
		}

		// 编码规则路由
		codeRuleHandler := handlers.NewCodeRuleHandler(services.NewCodeRuleService())
		codeRules := api.Group("/code-rules", auth.RequireLogin())
		{
			codeRules.POST("", auth.RequirePermission("code_rule:create"), codeRuleHandler.Create)
			codeRules.GET("", auth.RequirePermission("code_rule:list"), codeRuleHandler.List)
			codeRules.GET("/:uuid", auth.RequirePermission("code_rule:read"), codeRuleHandler.GetByUUID)
			codeRules.PUT("/:uuid", auth.RequirePermission("code_rule:update"), codeRuleHandler.Update)
			codeRules.DELETE("/:uuid", auth.RequirePermission("code_rule:delete"), codeRuleHandler.Delete)

			codeRules.POST("/generate", codeRuleHandler.Generate)
			codeRules.POST("/test-generate", codeRuleHandler.TestGenerate)
		}

		// 审批流路由
		approvalHandler := handlers.NewApprovalHandler(services.NewApprovalService())
		approvals := api.Group("/approvals", auth.RequireLogin())
		{
			approvals.POST("/processes", auth.RequirePermission("approval:manage"), approvalHandler.CreateProcess)
			approvals.GET("/processes", auth.RequirePermission("approval:list"), approvalHandler.ListProcesses)

			approvals.POST("/start", approvalHandler.Start)
			approvals.GET("/status", approvalHandler.Status)
			approvals.POST("/execute", approvalHandler.Execute)
			approvals.POST("/cancel-by-entity", approvalHandler.CancelByEntity)

			approvals.GET("/tasks/pending", approvalHandler.PendingTasks)
			approvals.POST("/tasks/:uuid/approve", approvalHandler.Approve)
			approvals.POST("/tasks/:uuid/reject", approvalHandler.Reject)
			approvals.POST("/tasks/:uuid/transfer", approvalHandler.Transfer)
			approvals.POST("/tasks/:uuid/cancel", approvalHandler.Cancel)
		}

		// 单据关联追溯路由
		documentRelationHandler := handlers.NewDocumentRelationHandler(services.NewDocumentRelationService())
		documentRelations := api.Group("/document-relations", auth.RequireLogin())
		{
			documentRelations.GET("/:type/:id", documentRelationHandler.Relations)
			documentRelations.GET("/:type/:id/trace", documentRelationHandler.Trace)
			documentRelations.POST("", auth.RequirePermission("document_relation:create"), documentRelationHandler.AddRelation)
			documentRelations.GET("/:type/:id/change-impact", documentRelationHandler.ChangeImpact)
			documentRelations.POST("/:type/:id/apply-impact", auth.RequirePermission("document_relation:apply"), documentRelationHandler.ApplyImpact)
		}

		// 集成连接路由
		integrationHandler := handlers.NewIntegrationHandler(services.NewIntegrationService())
		integrations := api.Group("/integrations", auth.RequireLogin())
		{
			integrations.POST("", auth.RequirePermission("integration:create"), integrationHandler.Create)
			integrations.GET("", auth.RequirePermission("integration:list"), integrationHandler.List)
			integrations.GET("/:uuid", auth.RequirePermission("integration:read"), integrationHandler.GetByUUID)
			integrations.PUT("/:uuid", auth.RequirePermission("integration:update"), integrationHandler.Update)
			integrations.DELETE("/:uuid", auth.RequirePermission("integration:delete"), integrationHandler.Delete)

			integrations.POST("/:uuid/test-connection", auth.RequirePermission("integration:read"), integrationHandler.TestConnection)
		}

		// 数据集路由
		datasetHandler := handlers.NewDatasetHandler(services.NewDatasetService())
		datasets := api.Group("/datasets", auth.RequireLogin())
		{
			datasets.POST("", auth.RequirePermission("dataset:create"), datasetHandler.Create)
			datasets.GET("", auth.RequirePermission("dataset:list"), datasetHandler.List)
			datasets.GET("/:uuid", auth.RequirePermission("dataset:read"), datasetHandler.GetByUUID)
			datasets.PUT("/:uuid", auth.RequirePermission("dataset:update"), datasetHandler.Update)
			datasets.DELETE("/:uuid", auth.RequirePermission("dataset:delete"), datasetHandler.Delete)

			datasets.POST("/:uuid/execute", auth.RequirePermission("dataset:execute"), datasetHandler.Execute)
			datasets.POST("/code/:code/execute", auth.RequirePermission("dataset:execute"), datasetHandler.ExecuteByCode)
			datasets.GET("/schema", auth.RequirePermission("dataset:read"), datasetHandler.Schema)
		}

		// 接口管理路由
		apiHandler := handlers.NewAPIHandler(services.NewAPIService())
		apiDefs := api.Group("/apis", auth.RequireLogin())
		{
			apiDefs.POST("", auth.RequirePermission("api:create"), apiHandler.Create)
			apiDefs.GET("", auth.RequirePermission("api:list"), apiHandler.List)
			apiDefs.GET("/:uuid", auth.RequirePermission("api:read"), apiHandler.GetByUUID)
			apiDefs.PUT("/:uuid", auth.RequirePermission("api:update"), apiHandler.Update)
			apiDefs.DELETE("/:uuid", auth.RequirePermission("api:delete"), apiHandler.Delete)
		}

		// 文件路由（下载接口支持预览Token免登录访问）
		fileHandler := handlers.NewFileHandler(services.NewFileService())
		files := api.Group("/core/files")
		{
			files.GET("/:uuid/download", fileHandler.Download)

			files.POST("/upload", auth.RequireLogin(), fileHandler.Upload)
			files.GET("", auth.RequireLogin(), fileHandler.List)
			files.GET("/:uuid/preview-url", auth.RequireLogin(), fileHandler.PreviewURL)
			files.DELETE("/:uuid", auth.RequireLogin(), auth.RequirePermission("file:delete"), fileHandler.Delete)
		}

		// 消息路由（WebSocket推送走查询参数token认证，不挂登录中间件）
		messageHandler := handlers.NewMessageHandler(services.NewMessageService())
		wsHandler := handlers.NewWebSocketHandler()
		api.GET("/messages/ws", wsHandler.InAppMessages)
		messages := api.Group("/messages", auth.RequireLogin())
		{
			messages.POST("/send", auth.RequirePermission("message:send"), messageHandler.Send)
			messages.GET("/in-app", messageHandler.ListInApp)
			messages.POST("/in-app/:uuid/read", messageHandler.MarkRead)
			messages.POST("/test-smtp", auth.RequireTenantAdmin(), messageHandler.TestSMTP)
		}

		// 数据字典路由
		dictionaryHandler := handlers.NewDictionaryHandler(services.NewDictionaryService())
		dictionaries := api.Group("/dictionaries", auth.RequireLogin())
		{
			dictionaries.POST("", auth.RequirePermission("dictionary:create"), dictionaryHandler.Create)
			dictionaries.GET("", auth.RequirePermission("dictionary:list"), dictionaryHandler.List)
			dictionaries.GET("/:code", dictionaryHandler.GetByCode)
			dictionaries.PUT("/:code", auth.RequirePermission("dictionary:update"), dictionaryHandler.Update)
			dictionaries.DELETE("/:code", auth.RequirePermission("dictionary:delete"), dictionaryHandler.Delete)

			dictionaries.POST("/:code/items", auth.RequirePermission("dictionary:update"), dictionaryHandler.AddItem)
			dictionaries.PUT("/:code/items/:item_id", auth.RequirePermission("dictionary:update"), dictionaryHandler.UpdateItem)
			dictionaries.DELETE("/:code/items/:item_id", auth.RequirePermission("dictionary:update"), dictionaryHandler.DeleteItem)
		}

		// 站点配置路由
		siteSettingHandler := handlers.NewSiteSettingHandler(services.NewSiteSettingService())
		siteSettings := api.Group("/site-settings", auth.RequireLogin())
		{
			siteSettings.GET("", siteSettingHandler.Get)
			siteSettings.PUT("", auth.RequireTenantAdmin(), siteSettingHandler.Save)

			siteSettings.GET("/parameters", siteSettingHandler.ListParameters)
			siteSettings.GET("/parameters/:key", siteSettingHandler.GetParameter)
			siteSettings.PUT("/parameters", auth.RequireTenantAdmin(), siteSettingHandler.SetParameter)
			siteSettings.DELETE("/parameters/:key", auth.RequireTenantAdmin(), siteSettingHandler.DeleteParameter)

			siteSettings.GET("/languages", siteSettingHandler.ListLanguages)
			siteSettings.POST("/languages", auth.RequireTenantAdmin(), siteSettingHandler.AddLanguage)
			siteSettings.POST("/languages/:code/default", auth.RequireTenantAdmin(), siteSettingHandler.SetDefaultLanguage)
		}

		// 日志路由
		logHandler := handlers.NewLogHandler(services.NewOperationLogService())
		logs := api.Group("/logs", auth.RequireLogin())
		{
			logs.GET("/operations", auth.RequirePermission("log:list"), logHandler.ListOperationLogs)
			logs.GET("/logins", auth.RequirePermission("log:list"), logHandler.ListLoginLogs)
		}
	}
}

func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "RiverEdge",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}
