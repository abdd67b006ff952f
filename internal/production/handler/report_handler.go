package handler

import (
	"errors"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler 客户明细与批次登记报表
type ReportHandler struct {
	sessions *service.SessionStore
	archive  *service.ArchiveService
}

func NewReportHandler(sessions *service.SessionStore, archive *service.ArchiveService) *ReportHandler {
	return &ReportHandler{sessions: sessions, archive: archive}
}

func (h *ReportHandler) session(c *gin.Context) *service.Session {
	return h.sessions.Get(GetSessionID(c))
}

// ==================== 客户明细 ====================

// Partywise GET /reports/partywise?party_id=
func (h *ReportHandler) Partywise(c *gin.Context) {
	partyID, ok := optionalIntQuery(c, "party_id")
	if !ok {
		return
	}
	Success(c, h.session(c).Partywise.Load(requestContext(c), partyID))
}

// ToggleRequest 展开/收起分组
type ToggleRequest struct {
	Key string `json:"key" binding:"required"`
}

// TogglePartywise POST /reports/partywise/toggle
func (h *ReportHandler) TogglePartywise(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "key is required")
		return
	}
	view, ok := h.session(c).Partywise.Toggle(req.Key)
	if !ok {
		NotFound(c, "group not found: "+req.Key)
		return
	}
	Success(c, view)
}

// ExpandRequest 全部展开或收起
type ExpandRequest struct {
	Expanded bool `json:"expanded"`
}

// ExpandPartywise POST /reports/partywise/expand
func (h *ReportHandler) ExpandPartywise(c *gin.Context) {
	var req ExpandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	report := h.session(c).Partywise
	if req.Expanded {
		Success(c, report.ExpandAll())
		return
	}
	Success(c, report.CollapseAll())
}

// ExportPartywiseCSV GET /reports/partywise/export.csv
func (h *ReportHandler) ExportPartywiseCSV(c *gin.Context) {
	h.export(c, h.session(c).Partywise.ExportCSV)
}

// ExportPartywiseXLSX GET /reports/partywise/export.xlsx
func (h *ReportHandler) ExportPartywiseXLSX(c *gin.Context) {
	h.export(c, h.session(c).Partywise.ExportXLSX)
}

// ==================== 批次登记 ====================

// LotRegister GET /reports/lot-register?page&page_size
func (h *ReportHandler) LotRegister(c *gin.Context) {
	page, pageSize := GetPagination(c)
	Success(c, h.session(c).LotReport.Page(requestContext(c), page, pageSize))
}

// ExportLotRegisterCSV GET /reports/lot-register/export.csv
func (h *ReportHandler) ExportLotRegisterCSV(c *gin.Context) {
	h.export(c, h.session(c).LotReport.ExportCSV)
}

// ExportLotRegisterXLSX GET /reports/lot-register/export.xlsx
func (h *ReportHandler) ExportLotRegisterXLSX(c *gin.Context) {
	h.export(c, h.session(c).LotReport.ExportXLSX)
}

// export 直接下载；?archive=1 时上传到对象存储并返回下载链接
func (h *ReportHandler) export(c *gin.Context, build func() (*service.ExportFile, error)) {
	file, err := build()
	if errors.Is(err, service.ErrNothingLoaded) {
		BadRequest(c, "load the report before exporting")
		return
	}
	if err != nil {
		InternalError(c, "export: "+err.Error())
		return
	}

	if c.Query("archive") != "1" {
		sendFile(c, file)
		return
	}
	if !h.archive.Enabled() {
		Error(c, 50100, "export archive not configured")
		return
	}
	if err := h.archive.Store(c.Request.Context(), file); err != nil {
		InternalError(c, "archive export: "+err.Error())
		return
	}
	Success(c, file)
}
