package entity

import (
	"github.com/shopspring/decimal"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
)

// AllocationItemStatus 订单项分配状态
type AllocationItemStatus string

const (
	AllocationAvailable      AllocationItemStatus = "available"
	AllocationFullyAllocated AllocationItemStatus = "fully_allocated"
	AllocationInconsistent   AllocationItemStatus = "inconsistent"
)

// AllocationMode 列表模式
type AllocationMode string

const (
	AllocationModeStatus    AllocationMode = "status"    // 全部订单项
	AllocationModeAvailable AllocationMode = "available" // 可分配订单项
)

// AllocationItem 订单项分配视图
// RemainingPieces 在数据不一致时为nil，不展示
type AllocationItem struct {
	ID                      int                  `json:"id"`
	OrderID                 int                  `json:"order_id"`
	OrderNumber             string               `json:"order_number,omitempty"`
	DesignNumber            string               `json:"design_number"`
	GroundColorName         string               `json:"ground_color_name"`
	BeamColorID             int                  `json:"beam_color_id"`
	BeamColorName           string               `json:"beam_color_name,omitempty"`
	BeamColorCode           string               `json:"beam_color_code,omitempty"`
	PartyName               string               `json:"party_name,omitempty"`
	QualityName             string               `json:"quality_name,omitempty"`
	RatePerPiece            *decimal.Decimal     `json:"rate_per_piece,omitempty"`
	TotalPieces             int                  `json:"total_pieces"`
	AllocatedPieces         int                  `json:"allocated_pieces"`
	RemainingPieces         *int                 `json:"remaining_pieces"`
	ReportedRemainingPieces int                  `json:"reported_remaining_pieces"`
	Status                  AllocationItemStatus `json:"status"`
	Issues                  []string             `json:"issues,omitempty"`
}

// AllocationFilter 客户端过滤条件
type AllocationFilter struct {
	OrderID     *int   `form:"order_id" json:"order_id,omitempty"`
	PartyName   string `form:"party" json:"party,omitempty"`
	QualityName string `form:"quality" json:"quality,omitempty"`
	BeamColor   string `form:"beam_color" json:"beam_color,omitempty"`
}

// BeamColorTotals 按经轴色汇总
type BeamColorTotals struct {
	BeamColorName   string `json:"beam_color_name"`
	BeamColorCode   string `json:"beam_color_code,omitempty"`
	Items           int    `json:"items"`
	TotalPieces     int    `json:"total_pieces"`
	AllocatedPieces int    `json:"allocated_pieces"`
	RemainingPieces int    `json:"remaining_pieces"`
}

// AllocationTotals 汇总卡片，只统计数据一致的订单项
type AllocationTotals struct {
	Items                int               `json:"items"`
	TotalPieces          int               `json:"total_pieces"`
	AllocatedPieces      int               `json:"allocated_pieces"`
	RemainingPieces      int               `json:"remaining_pieces"`
	AllocationPercentage float64           `json:"allocation_percentage"`
	InconsistentItems    int               `json:"inconsistent_items"`
	ByBeamColor          []BeamColorTotals `json:"by_beam_color"`
	Display              map[string]string `json:"display,omitempty"` // 千分位格式化后的数字
}

// AllocationView 分配状态页面
type AllocationView struct {
	Mode              AllocationMode   `json:"mode"`
	Filter            AllocationFilter `json:"filter"`
	Items             []AllocationItem `json:"items"`
	Inconsistencies   []AllocationItem `json:"inconsistencies,omitempty"`
	DataInconsistency bool             `json:"data_inconsistency"`
	Summary           AllocationTotals `json:"summary"`
	Error             *ViewError       `json:"error,omitempty"`
}

// BeamSummaryRowView 经轴汇总行
type BeamSummaryRowView struct {
	textileapi.BeamSummaryRow
	RemainingPieces *int     `json:"remaining_pieces"`
	Inconsistent    bool     `json:"inconsistent"`
	Issues          []string `json:"issues,omitempty"`
}

// BeamQualityView 按品质分组
type BeamQualityView struct {
	QualityName     string               `json:"quality_name"`
	Items           []BeamSummaryRowView `json:"items"`
	TotalPieces     int                  `json:"total_pieces"`
	AllocatedPieces int                  `json:"allocated_pieces"`
	RemainingPieces int                  `json:"remaining_pieces"`
}

// BeamSummaryView 经轴分配汇总页面
type BeamSummaryView struct {
	Qualities         []BeamQualityView            `json:"qualities"`
	Summary           textileapi.AllocationSummary `json:"summary"`
	DataInconsistency bool                         `json:"data_inconsistency"`
	InconsistentRows  int                          `json:"inconsistent_rows"`
	Error             *ViewError                   `json:"error,omitempty"`
}

// DashboardView 首页：分配状态 + 经轴汇总
type DashboardView struct {
	Allocation  *AllocationView  `json:"allocation,omitempty"`
	BeamSummary *BeamSummaryView `json:"beam_summary,omitempty"`
	Error       *ViewError       `json:"error,omitempty"`
}
