package textileapi

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// 通用
// =============================================================================

// ActionResult 后端的 {success, message} 响应
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// =============================================================================
// 客户（Party）
// =============================================================================

// Party 客户
type Party struct {
	ID            int    `json:"id"`
	PartyName     string `json:"party_name"`
	ContactNumber string `json:"contact_number"`
	BrokerName    string `json:"broker_name,omitempty"`
	GST           string `json:"gst,omitempty"`
	Address       string `json:"address,omitempty"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// PartyCreate 创建客户请求
type PartyCreate struct {
	PartyName     string `json:"party_name" validate:"required,min=2,max=255"`
	ContactNumber string `json:"contact_number" validate:"required,len=10,numeric"`
	BrokerName    string `json:"broker_name,omitempty" validate:"max=255"`
	GST           string `json:"gst,omitempty" validate:"max=15"`
	Address       string `json:"address,omitempty" validate:"max=1000"`
}

// PartyUpdate 更新客户请求，nil字段不修改
type PartyUpdate struct {
	PartyName     *string `json:"party_name,omitempty" validate:"omitempty,min=2,max=255"`
	ContactNumber *string `json:"contact_number,omitempty" validate:"omitempty,len=10,numeric"`
	BrokerName    *string `json:"broker_name,omitempty" validate:"omitempty,max=255"`
	GST           *string `json:"gst,omitempty" validate:"omitempty,max=15"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=1000"`
}

// PartyList 客户分页列表
type PartyList struct {
	Parties  []Party `json:"parties"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// PartySearchResult 客户搜索结果
type PartySearchResult struct {
	Parties []Party `json:"parties"`
	Total   int     `json:"total"`
	Count   int     `json:"count,omitempty"`
}

// =============================================================================
// 基础资料
// =============================================================================

// Color 颜色（地色/经轴色共用）
type Color struct {
	ID        int    `json:"id"`
	ColorCode string `json:"color_code"`
	ColorName string `json:"color_name"`
	IsActive  bool   `json:"is_active"`
}

// Quality 品质
type Quality struct {
	QualityID     int    `json:"quality_id"`
	QualityName   string `json:"quality_name"`
	FeederCount   int    `json:"feeder_count"`
	Specification string `json:"specification,omitempty"`
	IsActive      bool   `json:"is_active"`
}

// Cut 裁剪规格
type Cut struct {
	ID          int    `json:"id"`
	CutValue    string `json:"cut_value"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// DropdownData 表单下拉数据
type DropdownData struct {
	Parties   []Party   `json:"parties"`
	Colors    []Color   `json:"colors"`
	Qualities []Quality `json:"qualities"`
	Cuts      []Cut     `json:"cuts"`
}

// =============================================================================
// 订单
// =============================================================================

// GroundColor 地色→经轴色映射
type GroundColor struct {
	GroundColorName string `json:"ground_color_name" validate:"required"`
	BeamColorID     int    `json:"beam_color_id" validate:"gt=0"`
}

// OrderCreate 创建订单请求
type OrderCreate struct {
	PartyID       int             `json:"party_id" validate:"gt=0"`
	QualityID     int             `json:"quality_id" validate:"gt=0"`
	Sets          int             `json:"sets" validate:"gt=0"`
	Pick          int             `json:"pick" validate:"gt=0"`
	Cuts          []string        `json:"cuts" validate:"min=1,unique,dive,required"`
	RatePerPiece  decimal.Decimal `json:"rate_per_piece" validate:"gt=0"`
	DesignNumbers []string        `json:"design_numbers" validate:"min=1,dive,required"`
	GroundColors  []GroundColor   `json:"ground_colors" validate:"min=1,dive"`
	Notes         string          `json:"notes,omitempty" validate:"max=1000"`
}

func (r *OrderCreate) check() error {
	return checkDesignNumbers(r.DesignNumbers)
}

// Normalize 设计号去空格转大写，和后端一致
func (r *OrderCreate) Normalize() {
	r.DesignNumbers = normalizeDesignNumbers(r.DesignNumbers)
}

// OrderUpdate 更新订单请求
type OrderUpdate struct {
	PartyID       *int             `json:"party_id,omitempty" validate:"omitempty,gt=0"`
	QualityID     *int             `json:"quality_id,omitempty" validate:"omitempty,gt=0"`
	Sets          *int             `json:"sets,omitempty" validate:"omitempty,gt=0"`
	Pick          *int             `json:"pick,omitempty" validate:"omitempty,gt=0"`
	Cuts          []string         `json:"cuts,omitempty" validate:"omitempty,min=1,unique,dive,required"`
	RatePerPiece  *decimal.Decimal `json:"rate_per_piece,omitempty"`
	DesignNumbers []string         `json:"design_numbers,omitempty" validate:"omitempty,min=1,dive,required"`
	GroundColors  []GroundColor    `json:"ground_colors,omitempty" validate:"omitempty,min=1,dive"`
	Notes         *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *OrderUpdate) check() error {
	if r.RatePerPiece != nil && !r.RatePerPiece.IsPositive() {
		return fmt.Errorf("rate_per_piece must be greater than 0")
	}
	if r.DesignNumbers != nil {
		return checkDesignNumbers(r.DesignNumbers)
	}
	return nil
}

// BeamColorSummary 经轴色汇总
type BeamColorSummary struct {
	ColorCode        string `json:"color_code"`
	ColorName        string `json:"color_name"`
	SelectionCount   int    `json:"selection_count"`
	CalculatedPieces int    `json:"calculated_pieces"`
}

// Order 订单详情
type Order struct {
	ID            int                `json:"id"`
	OrderNumber   string             `json:"order_number"`
	PartyID       int                `json:"party_id"`
	QualityID     int                `json:"quality_id"`
	Sets          int                `json:"sets"`
	Pick          int                `json:"pick"`
	OrderDate     string             `json:"order_date"`
	RatePerPiece  decimal.Decimal    `json:"rate_per_piece"`
	TotalDesigns  int                `json:"total_designs"`
	TotalPieces   int                `json:"total_pieces"`
	TotalValue    decimal.Decimal    `json:"total_value"`
	Notes         string             `json:"notes,omitempty"`
	IsActive      bool               `json:"is_active"`
	CreatedAt     string             `json:"created_at,omitempty"`
	UpdatedAt     string             `json:"updated_at,omitempty"`
	PartyName     string             `json:"party_name,omitempty"`
	QualityName   string             `json:"quality_name,omitempty"`
	Cuts          []string           `json:"cuts"`
	DesignNumbers []string           `json:"design_numbers"`
	GroundColors  []GroundColor      `json:"ground_colors"`
	BeamSummary   map[string]int     `json:"beam_summary"`
	BeamColors    []BeamColorSummary `json:"beam_colors"`
}

// OrderListItem 订单列表行
type OrderListItem struct {
	ID           int             `json:"id"`
	OrderNumber  string          `json:"order_number"`
	OrderDate    string          `json:"order_date"`
	PartyName    string          `json:"party_name"`
	QualityName  string          `json:"quality_name"`
	TotalDesigns int             `json:"total_designs"`
	TotalPieces  int             `json:"total_pieces"`
	TotalValue   decimal.Decimal `json:"total_value"`
	CreatedAt    string          `json:"created_at,omitempty"`
}

// OrderList 订单分页列表
type OrderList struct {
	Orders   []OrderListItem `json:"orders"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Total    int             `json:"total"`
}

// OrderSearchResult 订单搜索结果
type OrderSearchResult struct {
	Orders []OrderListItem `json:"orders"`
	Total  int             `json:"total"`
}

// BeamPreviewRequest 下单前的经轴件数预览
type BeamPreviewRequest struct {
	GroundColors   []GroundColor `json:"ground_colors" validate:"min=1,dive"`
	DesignNumbers  []string      `json:"design_numbers" validate:"min=1,dive,required"`
	PiecesPerColor int           `json:"pieces_per_color" validate:"gt=0"`
}

// BeamPreview 经轴件数预览结果
type BeamPreview struct {
	TotalDesigns int                `json:"total_designs"`
	BeamSummary  map[string]int     `json:"beam_summary"`
	BeamColors   []BeamColorSummary `json:"beam_colors"`
	TotalPieces  int                `json:"total_pieces"`
}

// BeamDetail 订单的经轴明细
type BeamDetail struct {
	OrderID      int                `json:"order_id"`
	OrderNumber  string             `json:"order_number"`
	PartyName    string             `json:"party_name"`
	QualityName  string             `json:"quality_name"`
	TotalDesigns int                `json:"total_designs"`
	BeamSummary  map[string]int     `json:"beam_summary"`
	BeamColors   []BeamColorSummary `json:"beam_colors"`
}

// =============================================================================
// 批次（Lot）
// =============================================================================

// LotAllocationItem 创建批次时的分配项
type LotAllocationItem struct {
	OrderID         int    `json:"order_id" validate:"gt=0"`
	DesignNumber    string `json:"design_number" validate:"required"`
	GroundColorName string `json:"ground_color_name" validate:"required"`
	BeamColorID     int    `json:"beam_color_id" validate:"gt=0"`
	AllocatedPieces int    `json:"allocated_pieces" validate:"gt=0"`
	Notes           string `json:"notes,omitempty" validate:"max=500"`
}

// LotCreate 创建批次请求
type LotCreate struct {
	PartyID      int                 `json:"party_id" validate:"gt=0"`
	QualityID    int                 `json:"quality_id" validate:"gt=0"`
	LotDate      string              `json:"lot_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	BillNumber   string              `json:"bill_number,omitempty" validate:"max=50"`
	ActualPieces *int                `json:"actual_pieces,omitempty" validate:"omitempty,gt=0"`
	DeliveryDate string              `json:"delivery_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes        string              `json:"notes,omitempty" validate:"max=1000"`
	Allocations  []LotAllocationItem `json:"allocations" validate:"min=1,dive"`
}

func (r *LotCreate) check() error {
	seen := make(map[string]bool, len(r.Allocations))
	for _, a := range r.Allocations {
		key := fmt.Sprintf("%d|%s|%s", a.OrderID, a.DesignNumber, a.GroundColorName)
		if seen[key] {
			return fmt.Errorf("duplicate allocation for order %d, design %s, color %s",
				a.OrderID, a.DesignNumber, a.GroundColorName)
		}
		seen[key] = true
	}
	return nil
}

// LotUpdate 更新批次请求；状态是开放枚举，由后端校验
type LotUpdate struct {
	BillNumber   *string `json:"bill_number,omitempty" validate:"omitempty,max=50"`
	ActualPieces *int    `json:"actual_pieces,omitempty" validate:"omitempty,gt=0"`
	DeliveryDate *string `json:"delivery_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status       *string `json:"status,omitempty"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// LotAllocation 批次分配记录
type LotAllocation struct {
	ID              int    `json:"id"`
	LotID           int    `json:"lot_id"`
	OrderID         int    `json:"order_id"`
	DesignNumber    string `json:"design_number"`
	GroundColorName string `json:"ground_color_name"`
	BeamColorID     int    `json:"beam_color_id"`
	AllocatedPieces int    `json:"allocated_pieces"`
	Notes           string `json:"notes,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
	BeamColorName   string `json:"beam_color_name,omitempty"`
	BeamColorCode   string `json:"beam_color_code,omitempty"`
}

// Lot 批次
type Lot struct {
	ID           int             `json:"id"`
	LotNumber    string          `json:"lot_number"`
	LotDate      string          `json:"lot_date"`
	PartyID      int             `json:"party_id"`
	QualityID    int             `json:"quality_id"`
	TotalPieces  int             `json:"total_pieces"`
	BillNumber   string          `json:"bill_number,omitempty"`
	ActualPieces *int            `json:"actual_pieces,omitempty"`
	DeliveryDate string          `json:"delivery_date,omitempty"`
	Status       string          `json:"status"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    string          `json:"created_at,omitempty"`
	UpdatedAt    string          `json:"updated_at,omitempty"`
	PartyName    string          `json:"party_name,omitempty"`
	QualityName  string          `json:"quality_name,omitempty"`
	Allocations  []LotAllocation `json:"allocations"`
}

// LotList 批次分页列表
type LotList struct {
	Lots     []Lot `json:"lots"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int   `json:"total"`
}

// 行内编辑允许的字段（后端白名单）
const (
	FieldBillNumber   = "bill_number"
	FieldActualPieces = "actual_pieces"
	FieldDeliveryDate = "delivery_date"
	FieldLotDate      = "lot_date"
	FieldLotNumber    = "lot_number"
)

// PatchableLotFields 后端允许单字段更新的批次字段
var PatchableLotFields = []string{
	FieldBillNumber,
	FieldActualPieces,
	FieldDeliveryDate,
	FieldLotDate,
	FieldLotNumber,
}

// IsPatchableLotField 字段是否允许单字段更新
func IsPatchableLotField(field string) bool {
	for _, f := range PatchableLotFields {
		if f == field {
			return true
		}
	}
	return false
}

// CreateFromRegisterRequest 在登记表中录入批次号时创建批次
type CreateFromRegisterRequest struct {
	OrderID   int    `json:"order_id" validate:"gt=0"`
	LotNumber string `json:"lot_number" validate:"required,max=50"`
	LotDate   string `json:"lot_date" validate:"required,datetime=2006-01-02"`
	PartyID   int    `json:"party_id" validate:"gt=0"`
	QualityID int    `json:"quality_id" validate:"gt=0"`
}

// =============================================================================
// 分配状态
// =============================================================================

// OrderItemStatus 订单项分配状态（每个设计号×地色一行）
type OrderItemStatus struct {
	ID              int                 `json:"id"`
	OrderID         int                 `json:"order_id"`
	DesignNumber    string              `json:"design_number"`
	GroundColorName string              `json:"ground_color_name"`
	BeamColorID     int                 `json:"beam_color_id"`
	TotalPieces     int                 `json:"total_pieces"`
	AllocatedPieces int                 `json:"allocated_pieces"`
	RemainingPieces int                 `json:"remaining_pieces"`
	OrderNumber     string              `json:"order_number,omitempty"`
	PartyName       string              `json:"party_name,omitempty"`
	QualityName     string              `json:"quality_name,omitempty"`
	BeamColorName   string              `json:"beam_color_name,omitempty"`
	BeamColorCode   string              `json:"beam_color_code,omitempty"`
	RatePerPiece    decimal.NullDecimal `json:"rate_per_piece"`
}

// BeamSummaryRow 经轴汇总（含分配）
type BeamSummaryRow struct {
	PartyName            string   `json:"party_name"`
	QualityName          string   `json:"quality_name"`
	BeamColorCode        string   `json:"beam_color_code"`
	BeamColorName        string   `json:"beam_color_name"`
	TotalPieces          int      `json:"total_pieces"`
	AllocatedPieces      int      `json:"allocated_pieces"`
	RemainingPieces      int      `json:"remaining_pieces"`
	DesignCount          int      `json:"design_count"`
	AllocationPercentage *float64 `json:"allocation_percentage,omitempty"`
}

// BeamQualityGroup 按品质分组的经轴汇总
type BeamQualityGroup struct {
	QualityName     string           `json:"quality_name"`
	Items           []BeamSummaryRow `json:"items"`
	TotalPieces     int              `json:"total_pieces"`
	AllocatedPieces int              `json:"allocated_pieces"`
	RemainingPieces int              `json:"remaining_pieces"`
}

// AllocationSummary 分配汇总统计
type AllocationSummary struct {
	TotalOrders          int     `json:"total_orders"`
	TotalPieces          int     `json:"total_pieces"`
	AllocatedPieces      int     `json:"allocated_pieces"`
	RemainingPieces      int     `json:"remaining_pieces"`
	AllocationPercentage float64 `json:"allocation_percentage"`
	TotalLots            int     `json:"total_lots"`
	PendingLots          int     `json:"pending_lots"`
	CompletedLots        int     `json:"completed_lots"`
}

// BeamSummaryAllocation 经轴分配汇总报表
type BeamSummaryAllocation struct {
	Qualities []BeamQualityGroup `json:"qualities"`
	Summary   AllocationSummary  `json:"summary"`
}

// =============================================================================
// 报表
// =============================================================================

// PartywiseDetailItem 客户明细（红本）行
type PartywiseDetailItem struct {
	Date            string          `json:"date"`
	DesNo           string          `json:"des_no"`
	Quality         string          `json:"quality"`
	SetsPcs         int             `json:"sets_pcs"`
	Rate            decimal.Decimal `json:"rate"`
	LotNo           string          `json:"lot_no,omitempty"`
	LotNoDate       string          `json:"lot_no_date,omitempty"`
	BillNo          string          `json:"bill_no,omitempty"`
	ActualPcs       *int            `json:"actual_pcs,omitempty"`
	DeliveryDate    string          `json:"delivery_date,omitempty"`
	PartyName       string          `json:"party_name"`
	OrderID         int             `json:"order_id"`
	GroundColorName string          `json:"ground_color_name"`
	BeamColorName   string          `json:"beam_color_name,omitempty"`
}

// PartywiseDetail 单个客户的明细分组；party_id 旧版后端不返回
type PartywiseDetail struct {
	PartyID              int                   `json:"party_id,omitempty"`
	PartyName            string                `json:"party_name"`
	Items                []PartywiseDetailItem `json:"items"`
	TotalRemainingPieces int                   `json:"total_remaining_pieces"`
	TotalAllocatedPieces int                   `json:"total_allocated_pieces"`
	TotalValue           decimal.Decimal       `json:"total_value"`
}

// PartywiseReport 客户明细报表
type PartywiseReport struct {
	Parties          []PartywiseDetail `json:"parties"`
	TotalParties     int               `json:"total_parties"`
	GrandTotalPieces int               `json:"grand_total_pieces"`
}

// LotRegisterItem 批次登记行（批次×分配）
type LotRegisterItem struct {
	LotDate           string `json:"lot_date,omitempty"`
	LotNo             string `json:"lot_no,omitempty"`
	PartyName         string `json:"party_name"`
	DesignNo          string `json:"design_no"`
	Quality           string `json:"quality"`
	TotalPieces       int    `json:"total_pieces"`
	Sets              *int   `json:"sets,omitempty"`
	GroundColorsCount *int   `json:"ground_colors_count,omitempty"`
	BillNo            string `json:"bill_no,omitempty"`
	ActualPieces      *int   `json:"actual_pieces,omitempty"`
	DeliveryDate      string `json:"delivery_date,omitempty"`
	Status            string `json:"status"`
	LotID             *int   `json:"lot_id,omitempty"`
	AllocationID      *int   `json:"allocation_id,omitempty"`
	GroundColorName   string `json:"ground_color_name,omitempty"`
	OrderID           int    `json:"order_id"`
	OrderItemID       *int   `json:"order_item_id,omitempty"`
	PartyID           int    `json:"party_id"`
	QualityID         int    `json:"quality_id"`
}

// LotRegister 批次登记表；Total为后端给出的总行数，缺失时为nil
type LotRegister struct {
	Items          []LotRegisterItem `json:"items"`
	TotalLots      int               `json:"total_lots"`
	TotalPieces    int               `json:"total_pieces"`
	TotalDelivered int               `json:"total_delivered"`
	Page           int               `json:"page,omitempty"`
	PageSize       int               `json:"page_size,omitempty"`
	Total          *int              `json:"total,omitempty"`
}

// LotRegisterQuery 批次登记查询；Type为空表示全部
type LotRegisterQuery struct {
	Page     int
	PageSize int
	Type     string
}

// =============================================================================
// helpers
// =============================================================================

func normalizeDesignNumbers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		out = append(out, strings.ToUpper(strings.TrimSpace(d)))
	}
	return out
}

func checkDesignNumbers(in []string) error {
	seen := make(map[string]bool, len(in))
	for _, d := range normalizeDesignNumbers(in) {
		if d == "" {
			return fmt.Errorf("design number cannot be empty")
		}
		if seen[d] {
			return fmt.Errorf("duplicate design number %s", d)
		}
		seen[d] = true
	}
	return nil
}
