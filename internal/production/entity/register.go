package entity

import (
	"strings"
	"time"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
)

// RegisterFilter 登记表产线筛选
type RegisterFilter string

const (
	FilterAll       RegisterFilter = "All"
	FilterHighSpeed RegisterFilter = "High Speed"
	FilterSlowSpeed RegisterFilter = "Slow Speed"
	FilterK1K2      RegisterFilter = "K1K2"
)

// RegisterFilters 登记表的所有筛选标签，按页面顺序
var RegisterFilters = []RegisterFilter{FilterAll, FilterHighSpeed, FilterSlowSpeed, FilterK1K2}

// ParseRegisterFilter 解析筛选标签（忽略大小写，空串为All）
func ParseRegisterFilter(s string) (RegisterFilter, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FilterAll, true
	}
	for _, f := range RegisterFilters {
		if strings.EqualFold(string(f), s) {
			return f, true
		}
	}
	return "", false
}

// QueryValue 后端 lot_register_type 参数，All 不传
func (f RegisterFilter) QueryValue() string {
	if f == FilterAll {
		return ""
	}
	return string(f)
}

// EditState 行内编辑状态
type EditState string

const (
	EditPending   EditState = "pending"
	EditCommitted EditState = "committed"
	EditReverted  EditState = "reverted"
)

// 可行内编辑的字段
var EditableFields = []string{
	textileapi.FieldBillNumber,
	textileapi.FieldActualPieces,
	textileapi.FieldDeliveryDate,
}

// IsEditableField 是否允许在登记表中编辑
func IsEditableField(field string) bool {
	for _, f := range EditableFields {
		if f == field {
			return true
		}
	}
	return false
}

// CellEdit 单元格编辑（批次×字段）
type CellEdit struct {
	EditID    string    `json:"edit_id"`
	LotID     int       `json:"lot_id"`
	Field     string    `json:"field"`
	Value     string    `json:"value"`
	Previous  string    `json:"previous"`
	State     EditState `json:"state"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterRow 登记表行（批次×分配）
type RegisterRow struct {
	textileapi.LotRegisterItem
	Edits []CellEdit `json:"edits,omitempty"`
}

// RegisterTotals 登记表汇总（后端给出）
type RegisterTotals struct {
	TotalLots      int `json:"total_lots"`
	TotalPieces    int `json:"total_pieces"`
	TotalDelivered int `json:"total_delivered"`
}

// RegisterView 批次登记表页面
type RegisterView struct {
	Filter     RegisterFilter   `json:"filter"`
	Filters    []RegisterFilter `json:"filters"`
	Rows       []RegisterRow    `json:"rows"`
	Totals     RegisterTotals   `json:"totals"`
	Page       PageInfo         `json:"page"`
	Loading    bool             `json:"loading"`
	Generation uint64           `json:"generation"`
	Error      *ViewError       `json:"error,omitempty"`
}
