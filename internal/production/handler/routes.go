package handler

import (
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/middleware"
	"github.com/gin-gonic/gin"
)

// PermLotEdit 行内编辑与新建批次所需权限
const PermLotEdit = "lot:edit"

// RegisterRoutes 注册控制台接口；enforcePerms 为false时（未启用JWT）不检查权限
func RegisterRoutes(api *gin.RouterGroup, h *Handlers, enforcePerms bool) {
	edit := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if !enforcePerms {
			return handlers
		}
		return append([]gin.HandlerFunc{middleware.RequirePermission(PermLotEdit)}, handlers...)
	}

	// 分配状态与首页
	api.GET("/dashboard", h.Allocation.Dashboard)
	allocation := api.Group("/allocation")
	{
		allocation.GET("/status", h.Allocation.Status)
		allocation.GET("/available", h.Allocation.Available)
		allocation.GET("/beam-summary", h.Allocation.BeamSummary)
	}

	// 批次登记表
	register := api.Group("/register")
	{
		register.GET("", h.Register.View)
		register.POST("/filter", h.Register.SetFilter)
		register.POST("/page", h.Register.SetPage)
		register.POST("/reload", h.Register.Reload)
		register.PATCH("/lots/:id/field/:field", edit(h.Register.EditCell)...)
		register.POST("/create-lot", edit(h.Register.CreateLot)...)
		register.GET("/lots/:id/edits", h.Register.EditHistory)
		register.GET("/edits", h.Register.SessionEdits)
	}

	// 报表
	reports := api.Group("/reports")
	{
		reports.GET("/partywise", h.Report.Partywise)
		reports.POST("/partywise/toggle", h.Report.TogglePartywise)
		reports.POST("/partywise/expand", h.Report.ExpandPartywise)
		reports.GET("/partywise/export.csv", h.Report.ExportPartywiseCSV)
		reports.GET("/partywise/export.xlsx", h.Report.ExportPartywiseXLSX)
		reports.GET("/lot-register", h.Report.LotRegister)
		reports.GET("/lot-register/export.csv", h.Report.ExportLotRegisterCSV)
		reports.GET("/lot-register/export.xlsx", h.Report.ExportLotRegisterXLSX)
	}

	// 主数据与透传
	api.GET("/master/dropdown-data", h.Catalog.Dropdown)

	parties := api.Group("/parties")
	{
		parties.GET("", h.Catalog.ListParties)
		parties.GET("/search", h.Catalog.SearchParties)
		parties.GET("/:id", h.Catalog.GetParty)
		parties.POST("", h.Catalog.CreateParty)
		parties.PUT("/:id", h.Catalog.UpdateParty)
		parties.DELETE("/:id", h.Catalog.DeleteParty)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", h.Catalog.ListOrders)
		orders.GET("/search", h.Catalog.SearchOrders)
		orders.POST("/preview", h.Catalog.PreviewBeams)
		orders.GET("/beam-details", h.Catalog.BeamDetails)
		orders.GET("/:id", h.Catalog.GetOrder)
		orders.POST("", h.Catalog.CreateOrder)
		orders.PUT("/:id", h.Catalog.UpdateOrder)
		orders.DELETE("/:id", h.Catalog.DeleteOrder)
	}

	lots := api.Group("/lots")
	{
		lots.GET("", h.Catalog.ListLots)
		lots.GET("/:id", h.Catalog.GetLot)
		lots.POST("", edit(h.Catalog.CreateLot)...)
		lots.PUT("/:id", edit(h.Catalog.UpdateLot)...)
		lots.DELETE("/:id", edit(h.Catalog.DeleteLot)...)
	}

	// SSE
	api.GET("/sse/events", h.SSE.Stream)
}
