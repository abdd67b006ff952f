package handler

import (
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/service"
	"github.com/gin-gonic/gin"
)

// AllocationHandler 分配状态与首页
type AllocationHandler struct {
	svc       *service.AllocationService
	dashboard *service.DashboardService
}

func NewAllocationHandler(svc *service.AllocationService, dashboard *service.DashboardService) *AllocationHandler {
	return &AllocationHandler{svc: svc, dashboard: dashboard}
}

// Status GET /allocation/status?order_id&party&quality&beam_color
// 后端错误放在 data.error 中，页面内重试
func (h *AllocationHandler) Status(c *gin.Context) {
	var filter entity.AllocationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		BadRequest(c, "invalid filter: "+err.Error())
		return
	}
	Success(c, h.svc.Status(requestContext(c), filter))
}

// Available GET /allocation/available?party_id&quality_id
func (h *AllocationHandler) Available(c *gin.Context) {
	var filter entity.AllocationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		BadRequest(c, "invalid filter: "+err.Error())
		return
	}
	partyID, ok := optionalIntQuery(c, "party_id")
	if !ok {
		return
	}
	qualityID, ok := optionalIntQuery(c, "quality_id")
	if !ok {
		return
	}
	Success(c, h.svc.Available(requestContext(c), partyID, qualityID, filter))
}

// BeamSummary GET /allocation/beam-summary
func (h *AllocationHandler) BeamSummary(c *gin.Context) {
	Success(c, h.svc.BeamSummary(requestContext(c)))
}

// Dashboard GET /dashboard
func (h *AllocationHandler) Dashboard(c *gin.Context) {
	Success(c, h.dashboard.Load(requestContext(c)))
}
