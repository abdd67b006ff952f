package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"go.uber.org/zap"
)

// AllocationService 分配状态汇总
// 只做展示：不修改任何件数，不一致的数据标记出来而不是修正
type AllocationService struct {
	client *textileapi.Client
	logger *zap.Logger
}

// NewAllocationService 创建分配状态服务
func NewAllocationService(client *textileapi.Client, logger *zap.Logger) *AllocationService {
	return &AllocationService{client: client, logger: logger}
}

// Status 全部订单项的分配状态
func (s *AllocationService) Status(ctx context.Context, filter entity.AllocationFilter) *entity.AllocationView {
	items, err := s.client.AllocationStatus(ctx, filter.OrderID)
	if err != nil {
		s.logger.Error("Fetch allocation status failed", zap.Error(err))
		return &entity.AllocationView{
			Mode:   entity.AllocationModeStatus,
			Filter: filter,
			Items:  []entity.AllocationItem{},
			Error:  ToViewError(err, RetryAllocationStatus),
		}
	}
	return AggregateAllocation(items, entity.AllocationModeStatus, filter)
}

// Available 可分配的订单项（剩余件数>0）
func (s *AllocationService) Available(ctx context.Context, partyID, qualityID *int, filter entity.AllocationFilter) *entity.AllocationView {
	items, err := s.client.AvailableAllocations(ctx, partyID, qualityID)
	if err != nil {
		s.logger.Error("Fetch available allocations failed", zap.Error(err))
		return &entity.AllocationView{
			Mode:   entity.AllocationModeAvailable,
			Filter: filter,
			Items:  []entity.AllocationItem{},
			Error:  ToViewError(err, RetryAllocationAvailable),
		}
	}
	return AggregateAllocation(items, entity.AllocationModeAvailable, filter)
}

// BeamSummary 经轴分配汇总，逐行校验件数
func (s *AllocationService) BeamSummary(ctx context.Context) *entity.BeamSummaryView {
	resp, err := s.client.BeamSummaryAllocation(ctx)
	if err != nil {
		s.logger.Error("Fetch beam summary failed", zap.Error(err))
		return &entity.BeamSummaryView{
			Qualities: []entity.BeamQualityView{},
			Error:     ToViewError(err, RetryBeamSummary),
		}
	}
	return CheckBeamSummary(resp)
}

// checkCounts 校验 0 ≤ allocated ≤ total 且 remaining == total - allocated
func checkCounts(total, allocated, reportedRemaining int) (int, []string) {
	remaining := total - allocated
	var issues []string
	if total < 0 {
		issues = append(issues, fmt.Sprintf("total pieces %d is negative", total))
	}
	if allocated < 0 {
		issues = append(issues, fmt.Sprintf("allocated pieces %d is negative", allocated))
	}
	if allocated > total {
		issues = append(issues, fmt.Sprintf("allocated pieces %d exceed total pieces %d", allocated, total))
	}
	if reportedRemaining < 0 {
		issues = append(issues, fmt.Sprintf("remaining pieces %d is negative", reportedRemaining))
	}
	if reportedRemaining != remaining {
		issues = append(issues, fmt.Sprintf("remaining pieces %d does not match total - allocated = %d", reportedRemaining, remaining))
	}
	return remaining, issues
}

// classify 生成单个订单项视图
func classify(it textileapi.OrderItemStatus) entity.AllocationItem {
	item := entity.AllocationItem{
		ID:                      it.ID,
		OrderID:                 it.OrderID,
		OrderNumber:             it.OrderNumber,
		DesignNumber:            it.DesignNumber,
		GroundColorName:         it.GroundColorName,
		BeamColorID:             it.BeamColorID,
		BeamColorName:           it.BeamColorName,
		BeamColorCode:           it.BeamColorCode,
		PartyName:               it.PartyName,
		QualityName:             it.QualityName,
		TotalPieces:             it.TotalPieces,
		AllocatedPieces:         it.AllocatedPieces,
		ReportedRemainingPieces: it.RemainingPieces,
	}
	if it.RatePerPiece.Valid {
		rate := it.RatePerPiece.Decimal
		item.RatePerPiece = &rate
	}

	remaining, issues := checkCounts(it.TotalPieces, it.AllocatedPieces, it.RemainingPieces)
	switch {
	case len(issues) > 0:
		item.Status = entity.AllocationInconsistent
		item.Issues = issues
	case remaining == 0:
		item.Status = entity.AllocationFullyAllocated
		item.RemainingPieces = &remaining
	default:
		item.Status = entity.AllocationAvailable
		item.RemainingPieces = &remaining
	}
	return item
}

func matchesFilter(it entity.AllocationItem, f entity.AllocationFilter) bool {
	if f.OrderID != nil && it.OrderID != *f.OrderID {
		return false
	}
	if f.PartyName != "" && !containsFold(it.PartyName, f.PartyName) {
		return false
	}
	if f.QualityName != "" && !containsFold(it.QualityName, f.QualityName) {
		return false
	}
	if f.BeamColor != "" {
		bc := strings.TrimSpace(f.BeamColor)
		if !strings.EqualFold(it.BeamColorName, bc) &&
			!strings.EqualFold(it.BeamColorCode, bc) &&
			strconv.Itoa(it.BeamColorID) != bc {
			return false
		}
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

// AggregateAllocation 汇总订单项分配状态
// available 模式下排除已分配完和数据不一致的订单项，不一致项单独列出
func AggregateAllocation(items []textileapi.OrderItemStatus, mode entity.AllocationMode, filter entity.AllocationFilter) *entity.AllocationView {
	view := &entity.AllocationView{
		Mode:   mode,
		Filter: filter,
		Items:  make([]entity.AllocationItem, 0, len(items)),
	}

	for _, raw := range items {
		item := classify(raw)
		if !matchesFilter(item, filter) {
			continue
		}
		if item.Status == entity.AllocationInconsistent {
			view.Inconsistencies = append(view.Inconsistencies, item)
			if mode == entity.AllocationModeAvailable {
				continue
			}
		}
		if mode == entity.AllocationModeAvailable && item.Status == entity.AllocationFullyAllocated {
			continue
		}
		view.Items = append(view.Items, item)
	}

	view.DataInconsistency = len(view.Inconsistencies) > 0
	view.Summary = summarize(view.Items)
	view.Summary.InconsistentItems = len(view.Inconsistencies)
	if view.DataInconsistency {
		view.Error = &entity.ViewError{
			Kind:    entity.ViewErrorInconsistency,
			Message: fmt.Sprintf("%d order item(s) have inconsistent allocation counts", len(view.Inconsistencies)),
		}
	}
	return view
}

// summarize 汇总卡片，只统计数据一致的订单项
func summarize(items []entity.AllocationItem) entity.AllocationTotals {
	totals := entity.AllocationTotals{ByBeamColor: []entity.BeamColorTotals{}}
	byBeam := make(map[string]*entity.BeamColorTotals)

	for _, it := range items {
		if it.Status == entity.AllocationInconsistent || it.RemainingPieces == nil {
			continue
		}
		totals.Items++
		totals.TotalPieces += it.TotalPieces
		totals.AllocatedPieces += it.AllocatedPieces
		totals.RemainingPieces += *it.RemainingPieces

		name := it.BeamColorName
		if name == "" {
			name = fmt.Sprintf("Beam %d", it.BeamColorID)
		}
		bc, ok := byBeam[name]
		if !ok {
			bc = &entity.BeamColorTotals{BeamColorName: name, BeamColorCode: it.BeamColorCode}
			byBeam[name] = bc
		}
		bc.Items++
		bc.TotalPieces += it.TotalPieces
		bc.AllocatedPieces += it.AllocatedPieces
		bc.RemainingPieces += *it.RemainingPieces
	}

	for _, bc := range byBeam {
		totals.ByBeamColor = append(totals.ByBeamColor, *bc)
	}
	sort.Slice(totals.ByBeamColor, func(i, j int) bool {
		return totals.ByBeamColor[i].BeamColorName < totals.ByBeamColor[j].BeamColorName
	})

	totals.AllocationPercentage = percentage(totals.AllocatedPieces, totals.TotalPieces)
	totals.Display = map[string]string{
		"total_pieces":     formatCount(totals.TotalPieces),
		"allocated_pieces": formatCount(totals.AllocatedPieces),
		"remaining_pieces": formatCount(totals.RemainingPieces),
	}
	return totals
}

func percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}

// CheckBeamSummary 校验经轴汇总的每一行
func CheckBeamSummary(resp *textileapi.BeamSummaryAllocation) *entity.BeamSummaryView {
	view := &entity.BeamSummaryView{
		Qualities: make([]entity.BeamQualityView, 0, len(resp.Qualities)),
		Summary:   resp.Summary,
	}
	for _, q := range resp.Qualities {
		qv := entity.BeamQualityView{
			QualityName:     q.QualityName,
			Items:           make([]entity.BeamSummaryRowView, 0, len(q.Items)),
			TotalPieces:     q.TotalPieces,
			AllocatedPieces: q.AllocatedPieces,
			RemainingPieces: q.RemainingPieces,
		}
		for _, row := range q.Items {
			rv := entity.BeamSummaryRowView{BeamSummaryRow: row}
			remaining, issues := checkCounts(row.TotalPieces, row.AllocatedPieces, row.RemainingPieces)
			if len(issues) > 0 {
				rv.Inconsistent = true
				rv.Issues = issues
				view.InconsistentRows++
			} else {
				rv.RemainingPieces = &remaining
			}
			qv.Items = append(qv.Items, rv)
		}
		view.Qualities = append(view.Qualities, qv)
	}
	view.DataInconsistency = view.InconsistentRows > 0
	if view.DataInconsistency {
		view.Error = &entity.ViewError{
			Kind:    entity.ViewErrorInconsistency,
			Message: fmt.Sprintf("%d beam summary row(s) have inconsistent allocation counts", view.InconsistentRows),
		}
	}
	return view
}
