package handler

import (
	"strconv"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/middleware"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/repository"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/service"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"github.com/gin-gonic/gin"
)

// RegisterHandler 批次登记表
type RegisterHandler struct {
	sessions *service.SessionStore
	journal  *repository.EditLogRepository
}

func NewRegisterHandler(sessions *service.SessionStore, journal *repository.EditLogRepository) *RegisterHandler {
	return &RegisterHandler{sessions: sessions, journal: journal}
}

func (h *RegisterHandler) table(c *gin.Context) *service.RegisterTable {
	return h.sessions.Get(GetSessionID(c)).Register
}

// View GET /register
// 会话内首次访问时加载第一页
func (h *RegisterHandler) View(c *gin.Context) {
	table := h.table(c)
	view := table.View()
	if view.Generation == 0 {
		view = table.Load(requestContext(c))
	}
	Success(c, view)
}

// SetFilterRequest 切换产线
type SetFilterRequest struct {
	Filter string `json:"filter"`
}

// SetFilter POST /register/filter
func (h *RegisterHandler) SetFilter(c *gin.Context) {
	var req SetFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	filter, ok := entity.ParseRegisterFilter(req.Filter)
	if !ok {
		BadRequest(c, "unknown filter: "+req.Filter)
		return
	}
	c.Set(middleware.CtxRegisterFilter, string(filter))
	Success(c, h.table(c).SetFilter(requestContext(c), filter))
}

// PageRequest 翻页或修改每页条数
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// SetPage POST /register/page
// page_size 变化时回到第一页
func (h *RegisterHandler) SetPage(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	table := h.table(c)
	ctx := requestContext(c)
	if req.PageSize > 0 && req.PageSize != table.View().Page.PageSize {
		Success(c, table.SetPageSize(ctx, req.PageSize))
		return
	}
	Success(c, table.GoToPage(ctx, req.Page))
}

// Reload POST /register/reload
func (h *RegisterHandler) Reload(c *gin.Context) {
	Success(c, h.table(c).Load(requestContext(c)))
}

// EditCellRequest 行内编辑
type EditCellRequest struct {
	Value *string `json:"value"`
}

// EditCell PATCH /register/lots/:id/field/:field
// 值可以放在 body 的 value 或查询参数 value 中
func (h *RegisterHandler) EditCell(c *gin.Context) {
	lotID, ok := paramID(c, "id")
	if !ok {
		return
	}
	field := c.Param("field")

	var value string
	if v, exists := c.GetQuery("value"); exists {
		value = v
	} else {
		var req EditCellRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
			BadRequest(c, "value is required")
			return
		}
		value = *req.Value
	}

	edit, err := h.table(c).EditCell(requestContext(c), lotID, field, value)
	if edit.EditID != "" {
		c.Set(middleware.CtxEditID, edit.EditID)
	}
	if err != nil {
		BackendError(c, err)
		return
	}
	Success(c, gin.H{
		"edit": edit,
		"view": h.table(c).View(),
	})
}

// CreateLot POST /register/create-lot
func (h *RegisterHandler) CreateLot(c *gin.Context) {
	var req textileapi.CreateFromRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, view, err := h.table(c).CreateFromRegister(requestContext(c), &req)
	if err != nil {
		BackendError(c, err)
		return
	}
	Created(c, gin.H{
		"result": res,
		"view":   view,
	})
}

// EditHistory GET /register/lots/:id/edits?limit=
func (h *RegisterHandler) EditHistory(c *gin.Context) {
	lotID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if h.journal == nil {
		Success(c, gin.H{"enabled": false, "items": []entity.LotFieldEdit{}})
		return
	}
	limit := 50
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 500 {
		limit = l
	}

	ctx := c.Request.Context()
	items, err := h.journal.ListByLot(ctx, lotID, limit)
	if err != nil {
		InternalError(c, "list lot edits: "+err.Error())
		return
	}
	counts, err := h.journal.CountByState(ctx, lotID)
	if err != nil {
		InternalError(c, "count lot edits: "+err.Error())
		return
	}
	Success(c, gin.H{
		"enabled": true,
		"items":   items,
		"counts":  counts,
	})
}

// SessionEdits GET /register/edits 当前会话的编辑记录
func (h *RegisterHandler) SessionEdits(c *gin.Context) {
	if h.journal == nil {
		Success(c, gin.H{"enabled": false, "items": []entity.LotFieldEdit{}})
		return
	}
	items, err := h.journal.ListBySession(c.Request.Context(), GetSessionID(c), 100)
	if err != nil {
		InternalError(c, "list session edits: "+err.Error())
		return
	}
	Success(c, gin.H{"enabled": true, "items": items})
}
