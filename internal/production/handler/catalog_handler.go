package handler

import (
	"strconv"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/service"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"github.com/gin-gonic/gin"
)

// CatalogHandler 主数据、客户、订单、批次
type CatalogHandler struct {
	svc    *service.CatalogService
	master *service.MasterService
}

func NewCatalogHandler(svc *service.CatalogService, master *service.MasterService) *CatalogHandler {
	return &CatalogHandler{svc: svc, master: master}
}

// Dropdown GET /master/dropdown-data
func (h *CatalogHandler) Dropdown(c *gin.Context) {
	data, err := h.master.Dropdown(c.Request.Context())
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, data)
}

func searchLimit(c *gin.Context) int {
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		return l
	}
	return 10
}

// ==================== 客户 ====================

func (h *CatalogHandler) ListParties(c *gin.Context) {
	page, pageSize := GetPagination(c)
	list, err := h.svc.ListParties(c.Request.Context(), page, pageSize)
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, list)
}

// SearchParties GET /parties/search?q=
func (h *CatalogHandler) SearchParties(c *gin.Context) {
	res, err := h.svc.SearchParties(c.Request.Context(), c.Query("q"), searchLimit(c))
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, res)
}

func (h *CatalogHandler) GetParty(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	party, err := h.svc.GetParty(c.Request.Context(), id)
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, party)
}

func (h *CatalogHandler) CreateParty(c *gin.Context) {
	var req textileapi.PartyCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	party, err := h.svc.CreateParty(c.Request.Context(), &req)
	if err != nil {
		BackendError(c, err)
		return
	}
	Created(c, party)
}

func (h *CatalogHandler) UpdateParty(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req textileapi.PartyUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	party, err := h.svc.UpdateParty(c.Request.Context(), id, &req)
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, party)
}

func (h *CatalogHandler) DeleteParty(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteParty(c.Request.Context(), id); err != nil {
		BackendError(c, err)
		return
	}
	Success(c, nil)
}

// ==================== 订单 ====================

func (h *CatalogHandler) ListOrders(c *gin.Context) {
	page, pageSize := GetPagination(c)
	list, err := h.svc.ListOrders(c.Request.Context(), page, pageSize)
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, list)
}

func (h *CatalogHandler) SearchOrders(c *gin.Context) {
	res, err := h.svc.SearchOrders(c.Request.Context(), c.Query("q"), searchLimit(c))
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, res)
}

func (h *CatalogHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, order)
}

// CreateOrder POST /orders 创建后初始化分配状态
func (h *CatalogHandler) CreateOrder(c *gin.Context) {
	var req textileapi.OrderCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	created, err := h.svc.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		BackendError(c, err)
		return
	}
	Created(c, created)
}

func (h *CatalogHandler) UpdateOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req textileapi.OrderUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	order, err := h.svc.UpdateOrder(c.Request.Context(), id, &req)
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, order)
}

func (h *CatalogHandler) DeleteOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteOrder(c.Request.Context(), id); err != nil {
		BackendError(c, err)
		return
	}
	Success(c, nil)
}

// PreviewBeams POST /orders/preview
func (h *CatalogHandler) PreviewBeams(c *gin.Context) {
	var req textileapi.BeamPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	preview, err := h.svc.PreviewBeams(c.Request.Context(), &req)
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, preview)
}

// BeamDetails GET /orders/beam-details
func (h *CatalogHandler) BeamDetails(c *gin.Context) {
	details, err := h.svc.BeamDetails(c.Request.Context())
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, gin.H{"items": details})
}

// ==================== 批次 ====================

func (h *CatalogHandler) ListLots(c *gin.Context) {
	page, pageSize := GetPagination(c)
	list, err := h.svc.ListLots(c.Request.Context(), page, pageSize)
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, list)
}

func (h *CatalogHandler) GetLot(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	lot, err := h.svc.GetLot(c.Request.Context(), id)
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, lot)
}

func (h *CatalogHandler) CreateLot(c *gin.Context) {
	var req textileapi.LotCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	lot, err := h.svc.CreateLot(c.Request.Context(), &req)
	if err != nil {
		BackendError(c, err)
		return
	}
	Created(c, lot)
}

func (h *CatalogHandler) UpdateLot(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req textileapi.LotUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	lot, err := h.svc.UpdateLot(c.Request.Context(), id, &req)
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, lot)
}

func (h *CatalogHandler) DeleteLot(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteLot(c.Request.Context(), id); err != nil {
		BackendError(c, err)
		return
	}
	Success(c, nil)
}
