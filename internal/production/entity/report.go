package entity

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
)

// RowStatus 客户明细行状态
type RowStatus string

const (
	RowAllocated RowStatus = "allocated"
	RowPending   RowStatus = "pending"
)

// RowStatusOf 有批次号即为已分配
func RowStatusOf(item textileapi.PartywiseDetailItem) RowStatus {
	if strings.TrimSpace(item.LotNo) != "" {
		return RowAllocated
	}
	return RowPending
}

// PartyRow 客户明细行
type PartyRow struct {
	textileapi.PartywiseDetailItem
	Status RowStatus `json:"status"`
}

// PartyGroup 客户分组；Key 有客户ID时为 party:<id>，否则为 name:<客户名>
type PartyGroup struct {
	Key                  string          `json:"key"`
	PartyID              int             `json:"party_id,omitempty"`
	PartyName            string          `json:"party_name"`
	ItemCount            int             `json:"item_count"`
	TotalRemainingPieces int             `json:"total_remaining_pieces"`
	TotalAllocatedPieces int             `json:"total_allocated_pieces"`
	TotalValue           decimal.Decimal `json:"total_value"`
	Expanded             bool            `json:"expanded"`
	Rows                 []PartyRow      `json:"rows"`
}

// PartywiseView 客户明细报表页面
type PartywiseView struct {
	PartyID          *int              `json:"party_id,omitempty"`
	Groups           []PartyGroup      `json:"groups"`
	TotalParties     int               `json:"total_parties"`
	GrandTotalPieces int               `json:"grand_total_pieces"`
	GrandTotalValue  decimal.Decimal   `json:"grand_total_value"`
	Display          map[string]string `json:"display,omitempty"`
	Loaded           bool              `json:"loaded"`
	Error            *ViewError        `json:"error,omitempty"`
}

// Badge 状态徽标样式
type Badge string

const (
	BadgeWarning Badge = "warning"
	BadgeInfo    Badge = "info"
	BadgeSuccess Badge = "success"
	BadgeAccent  Badge = "accent"
	BadgeNeutral Badge = "neutral"
)

var statusBadges = map[string]Badge{
	"pending":     BadgeWarning,
	"in_progress": BadgeInfo,
	"completed":   BadgeSuccess,
	"delivered":   BadgeAccent,
}

// BadgeFor 批次状态对应的徽标；未知状态为 neutral
func BadgeFor(status string) Badge {
	key := strings.ToLower(strings.TrimSpace(status))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if b, ok := statusBadges[key]; ok {
		return b
	}
	return BadgeNeutral
}

// LotReportRow 批次登记报表行
type LotReportRow struct {
	textileapi.LotRegisterItem
	Badge Badge `json:"badge"`
}

// LotReportView 批次登记报表页面（只读）
type LotReportView struct {
	Rows   []LotReportRow `json:"rows"`
	Totals RegisterTotals `json:"totals"`
	Page   PageInfo       `json:"page"`
	Error  *ViewError     `json:"error,omitempty"`
}
