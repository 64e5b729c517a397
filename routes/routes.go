package routes

import (
	"github.com/buildtrack/matstock_backend/controllers"
	"github.com/buildtrack/matstock_backend/middlewares"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {

	api := r.Group("/api")
	{
		api.POST("/login", controllers.Login)

		auth := api.Group("/", middlewares.AuthMiddleware())
		{
			auth.GET("/profile", controllers.GetProfile)

			materials := auth.Group("/materials")
			{
				materials.GET("", controllers.ListMaterials)
				materials.GET("/:id", controllers.GetMaterial)
				materials.POST("", controllers.CreateMaterial)
				materials.PUT("/:id", controllers.UpdateMaterial)
				materials.PATCH("/:id/active", controllers.ToggleActiveMaterial)
			}

			godowns := auth.Group("/godowns")
			{
				godowns.GET("", controllers.ListGodowns)
				godowns.GET("/:id", controllers.GetGodown)
				godowns.POST("", controllers.CreateGodown)
				godowns.PUT("/:id", controllers.UpdateGodown)
				godowns.PATCH("/:id/active", controllers.ToggleActiveGodown)
			}

			sites := auth.Group("/sites")
			{
				sites.GET("", controllers.ListSites)
				sites.GET("/:id", controllers.GetSite)
				sites.POST("", controllers.CreateSite)
				sites.PUT("/:id", controllers.UpdateSite)
				sites.PATCH("/:id/active", controllers.ToggleActiveSite)
			}

			companies := auth.Group("/companies")
			{
				companies.GET("", controllers.ListCompanies)
				companies.GET("/:id", controllers.GetCompany)
				companies.POST("", controllers.CreateCompany)
				companies.PUT("/:id", controllers.UpdateCompany)
				companies.PATCH("/:id/active", controllers.ToggleActiveCompany)
			}

			bills := auth.Group("/purchase-bills")
			{
				bills.GET("", controllers.ListPurchaseBills)
				bills.GET("/:id", controllers.GetPurchaseBill)
				bills.POST("", controllers.CreatePurchaseBill)
			}

			issues := auth.Group("/material-issues")
			{
				issues.GET("", controllers.ListMaterialIssues)
				issues.GET("/:id", controllers.GetMaterialIssue)
				issues.POST("", controllers.CreateMaterialIssue)
			}

			stock := auth.Group("/stock")
			{
				stock.GET("/transactions", controllers.ListStockTransactions)
				stock.GET("/transactions/:id", controllers.GetStockTransaction)
				stock.GET("/inventory", controllers.GetInventory)
				stock.GET("/availability", controllers.CheckAvailability)
				stock.GET("/balance", controllers.GetBalance)
			}

			reports := auth.Group("/reports")
			{
				reports.GET("/site-wise", controllers.SiteWiseReport)
				reports.GET("/material-wise", controllers.MaterialWiseReport)
				reports.GET("/material-wise/excel", controllers.MaterialWiseReportExcel)
			}

			// destructive and administrative operations
			admin := auth.Group("/", middlewares.AdminRequired())
			{
				admin.POST("/users", controllers.RegisterUser)
				admin.GET("/users", controllers.ListUsers)
				admin.PATCH("/users/:id/active", controllers.ToggleActiveUser)

				admin.DELETE("/materials/:id", controllers.DeleteMaterial)
				admin.DELETE("/godowns/:id", controllers.DeleteGodown)
				admin.DELETE("/sites/:id", controllers.DeleteSite)
				admin.DELETE("/companies/:id", controllers.DeleteCompany)
				admin.DELETE("/purchase-bills/:id", controllers.DeletePurchaseBill)
				admin.DELETE("/material-issues/:id", controllers.DeleteMaterialIssue)

				admin.GET("/reports/consistency", controllers.LedgerConsistencyReport)
			}
		}
	}
}
