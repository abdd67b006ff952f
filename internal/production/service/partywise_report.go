package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PartywiseReport 客户明细报表（每个会话一个）
type PartywiseReport struct {
	mu        sync.Mutex
	client    *textileapi.Client
	logger    *zap.Logger
	sessionID string

	generation uint64
	partyID    *int
	report     *textileapi.PartywiseReport
	expanded   map[string]bool
	err        *entity.ViewError
}

// NewPartywiseReport 创建客户明细报表
func NewPartywiseReport(client *textileapi.Client, logger *zap.Logger, sessionID string) *PartywiseReport {
	return &PartywiseReport{
		client:    client,
		logger:    logger,
		sessionID: sessionID,
		expanded:  make(map[string]bool),
	}
}

// GroupKey 分组键：有客户ID用ID，否则退回客户名
func GroupKey(p textileapi.PartywiseDetail) string {
	if p.PartyID > 0 {
		return "party:" + strconv.Itoa(p.PartyID)
	}
	return "name:" + p.PartyName
}

// Load 加载报表；仍存在的分组保留展开状态
// 先发出的请求晚返回时丢弃其结果
func (r *PartywiseReport) Load(ctx context.Context, partyID *int) entity.PartywiseView {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	resp, err := r.client.PartywiseDetail(ctx, partyID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		r.logger.Debug("Discard stale partywise response",
			zap.String("session_id", r.sessionID),
			zap.Uint64("generation", gen),
			zap.Uint64("current", r.generation))
		return r.viewLocked()
	}
	r.partyID = partyID
	if err != nil {
		r.logger.Error("Fetch partywise detail failed",
			zap.String("session_id", r.sessionID),
			zap.Error(err))
		r.report = nil
		r.err = ToViewError(err, RetryPartywise)
		return r.viewLocked()
	}
	r.report = resp
	r.err = nil

	present := make(map[string]bool, len(resp.Parties))
	for _, p := range resp.Parties {
		present[GroupKey(p)] = true
	}
	for key := range r.expanded {
		if !present[key] {
			delete(r.expanded, key)
		}
	}
	return r.viewLocked()
}

// View 当前报表
func (r *PartywiseReport) View() entity.PartywiseView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

// Toggle 切换分组展开；未知分组返回 false
func (r *PartywiseReport) Toggle(key string) (entity.PartywiseView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasGroupLocked(key) {
		return r.viewLocked(), false
	}
	r.expanded[key] = !r.expanded[key]
	return r.viewLocked(), true
}

// ExpandAll 展开全部分组
func (r *PartywiseReport) ExpandAll() entity.PartywiseView {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.report != nil {
		for _, p := range r.report.Parties {
			r.expanded[GroupKey(p)] = true
		}
	}
	return r.viewLocked()
}

// CollapseAll 收起全部分组
func (r *PartywiseReport) CollapseAll() entity.PartywiseView {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expanded = make(map[string]bool)
	return r.viewLocked()
}

// ExportCSV 导出已加载的数据
func (r *PartywiseReport) ExportCSV() (*ExportFile, error) {
	view := r.View()
	if !view.Loaded {
		return nil, ErrNothingLoaded
	}
	return &ExportFile{
		FileName:    exportName("partywise_detail", "csv"),
		ContentType: ContentTypeCSV,
		Data:        PartywiseCSV(view.Groups),
	}, nil
}

// ExportXLSX 导出为Excel
func (r *PartywiseReport) ExportXLSX() (*ExportFile, error) {
	view := r.View()
	if !view.Loaded {
		return nil, ErrNothingLoaded
	}
	data, err := PartywiseXLSX(view.Groups)
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		FileName:    exportName("partywise_detail", "xlsx"),
		ContentType: ContentTypeXLSX,
		Data:        data,
	}, nil
}

func (r *PartywiseReport) hasGroupLocked(key string) bool {
	if r.report == nil {
		return false
	}
	for _, p := range r.report.Parties {
		if GroupKey(p) == key {
			return true
		}
	}
	return false
}

func (r *PartywiseReport) viewLocked() entity.PartywiseView {
	view := entity.PartywiseView{
		PartyID: r.partyID,
		Groups:  []entity.PartyGroup{},
		Loaded:  r.report != nil,
		Error:   r.err,
	}
	if r.report == nil {
		return view
	}

	view.TotalParties = r.report.TotalParties
	view.GrandTotalPieces = r.report.GrandTotalPieces
	view.GrandTotalValue = decimal.Zero
	for _, p := range r.report.Parties {
		key := GroupKey(p)
		g := entity.PartyGroup{
			Key:                  key,
			PartyID:              p.PartyID,
			PartyName:            p.PartyName,
			ItemCount:            len(p.Items),
			TotalRemainingPieces: p.TotalRemainingPieces,
			TotalAllocatedPieces: p.TotalAllocatedPieces,
			TotalValue:           p.TotalValue,
			Expanded:             r.expanded[key],
			Rows:                 make([]entity.PartyRow, 0, len(p.Items)),
		}
		for _, it := range p.Items {
			g.Rows = append(g.Rows, entity.PartyRow{PartywiseDetailItem: it, Status: entity.RowStatusOf(it)})
		}
		view.GrandTotalValue = view.GrandTotalValue.Add(p.TotalValue)
		view.Groups = append(view.Groups, g)
	}
	view.Display = map[string]string{
		"grand_total_pieces": formatCount(view.GrandTotalPieces),
		"grand_total_value":  formatMoney(view.GrandTotalValue),
	}
	return view
}
