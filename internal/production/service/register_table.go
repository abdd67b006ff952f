package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxPageSize = 100
	// patchTimeout 编辑请求与调用方连接解耦后的上限
	patchTimeout = 30 * time.Second
)

// RegisterTable 批次登记表（每个会话一个）
// 每次加载都带一个代号，返回时代号已过期的响应直接丢弃
type RegisterTable struct {
	mu        sync.Mutex
	client    *textileapi.Client
	observer  EditObserver
	logger    *zap.Logger
	sessionID string

	filter     entity.RegisterFilter
	page       int
	pageSize   int
	rows       []textileapi.LotRegisterItem
	totals     entity.RegisterTotals
	total      *int
	generation uint64
	loading    bool
	err        *entity.ViewError
	edits      map[string]*entity.CellEdit // lotID|field → 最新一次编辑
}

// NewRegisterTable 创建登记表
func NewRegisterTable(client *textileapi.Client, observer EditObserver, logger *zap.Logger, sessionID string, pageSize int) *RegisterTable {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = 20
	}
	return &RegisterTable{
		client:    client,
		observer:  observer,
		logger:    logger,
		sessionID: sessionID,
		filter:    entity.FilterAll,
		page:      1,
		pageSize:  pageSize,
		edits:     make(map[string]*entity.CellEdit),
	}
}

// View 当前页面快照
func (t *RegisterTable) View() entity.RegisterView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Load 按当前筛选和页码加载
func (t *RegisterTable) Load(ctx context.Context) entity.RegisterView {
	t.mu.Lock()
	t.generation++
	gen := t.generation
	query := textileapi.LotRegisterQuery{Page: t.page, PageSize: t.pageSize, Type: t.filter.QueryValue()}
	t.loading = true
	t.mu.Unlock()

	resp, err := t.client.LotRegister(ctx, query)

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.generation {
		t.logger.Debug("Discard stale lot register response",
			zap.String("session_id", t.sessionID),
			zap.Uint64("generation", gen),
			zap.Uint64("current", t.generation))
		return t.snapshotLocked()
	}
	t.loading = false
	if err != nil {
		t.logger.Error("Fetch lot register failed",
			zap.String("session_id", t.sessionID),
			zap.String("filter", string(query.Type)),
			zap.Int("page", query.Page),
			zap.Error(err))
		t.rows = nil
		t.totals = entity.RegisterTotals{}
		t.total = nil
		t.err = ToViewError(err, RetryRegister)
		return t.snapshotLocked()
	}
	t.rows = resp.Items
	t.totals = entity.RegisterTotals{
		TotalLots:      resp.TotalLots,
		TotalPieces:    resp.TotalPieces,
		TotalDelivered: resp.TotalDelivered,
	}
	t.total = resp.Total
	t.err = nil
	t.pruneSettledLocked()
	return t.snapshotLocked()
}

// pruneSettledLocked 重新加载后只保留进行中的编辑，已有结果的不再挂在行上
func (t *RegisterTable) pruneSettledLocked() {
	for key, edit := range t.edits {
		if edit.State != entity.EditPending {
			delete(t.edits, key)
		}
	}
}

// SetFilter 切换产线：回到第一页，清空旧数据后重新加载
func (t *RegisterTable) SetFilter(ctx context.Context, filter entity.RegisterFilter) entity.RegisterView {
	t.mu.Lock()
	t.filter = filter
	t.page = 1
	t.rows = nil
	t.totals = entity.RegisterTotals{}
	t.total = nil
	t.err = nil
	t.mu.Unlock()
	return t.Load(ctx)
}

// GoToPage 跳转页码，小于1按1处理
func (t *RegisterTable) GoToPage(ctx context.Context, page int) entity.RegisterView {
	if page < 1 {
		page = 1
	}
	t.mu.Lock()
	t.page = page
	t.mu.Unlock()
	return t.Load(ctx)
}

// SetPageSize 修改每页条数并回到第一页
func (t *RegisterTable) SetPageSize(ctx context.Context, size int) entity.RegisterView {
	if size < 1 {
		size = 1
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	t.mu.Lock()
	t.pageSize = size
	t.page = 1
	t.mu.Unlock()
	return t.Load(ctx)
}

// EditCell 行内编辑单个字段：pending → committed | reverted
// 同一单元格较新的编辑会取代仍在进行中的旧编辑，旧编辑的结果不再影响显示
func (t *RegisterTable) EditCell(ctx context.Context, lotID int, field, value string) (entity.CellEdit, error) {
	if !entity.IsEditableField(field) {
		return entity.CellEdit{}, validationError(fmt.Sprintf("field %q is not editable", field))
	}
	value, err := normalizeCellValue(field, value)
	if err != nil {
		return entity.CellEdit{}, err
	}

	t.mu.Lock()
	row := t.findLotLocked(lotID)
	if row == nil {
		t.mu.Unlock()
		return entity.CellEdit{}, validationError(fmt.Sprintf("lot %d is not on the current page", lotID))
	}
	edit := &entity.CellEdit{
		EditID:    uuid.New().String(),
		LotID:     lotID,
		Field:     field,
		Value:     value,
		Previous:  cellValue(*row, field),
		State:     entity.EditPending,
		UpdatedAt: time.Now(),
	}
	t.edits[cellKey(lotID, field)] = edit
	pending := *edit
	t.mu.Unlock()

	t.observer.EditTransition(ctx, t.sessionID, pending)

	// 调用方断开时后端可能已经生效，请求不随调用方取消
	patchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), patchTimeout)
	res, err := t.client.PatchLotField(patchCtx, lotID, field, value)
	cancel()
	if err == nil && !res.Success {
		err = &textileapi.ServerError{
			Method:     "PATCH",
			Path:       fmt.Sprintf("/lots/%d/field/%s", lotID, field),
			StatusCode: 200,
			Detail:     res.Message,
		}
	}

	t.mu.Lock()
	current := t.edits[cellKey(lotID, field)]
	superseded := current != edit
	if err != nil {
		t.logger.Warn("Patch lot field failed, reverting",
			zap.String("session_id", t.sessionID),
			zap.Int("lot_id", lotID),
			zap.String("field", field),
			zap.Error(err))
		edit.State = entity.EditReverted
		edit.Error = textileapi.Detail(err)
	} else {
		edit.State = entity.EditCommitted
		// 较新的编辑已有结果时，旧编辑不再写入
		if !superseded || (current != nil && current.State == entity.EditPending) {
			t.applyLocked(lotID, field, value)
		}
	}
	edit.UpdatedAt = time.Now()
	if superseded && current != nil {
		t.logger.Debug("Edit superseded by a newer one",
			zap.String("edit_id", edit.EditID),
			zap.String("current", current.EditID))
	}
	done := *edit
	t.mu.Unlock()

	t.observer.EditTransition(ctx, t.sessionID, done)
	return done, nil
}

// CreateFromRegister 登记表录入批次号创建批次，成功后回到第一页重新加载
func (t *RegisterTable) CreateFromRegister(ctx context.Context, req *textileapi.CreateFromRegisterRequest) (*textileapi.ActionResult, entity.RegisterView, error) {
	res, err := t.client.CreateLotFromRegister(ctx, req)
	if err != nil {
		t.logger.Error("Create lot from register failed",
			zap.String("session_id", t.sessionID),
			zap.Int("order_id", req.OrderID),
			zap.Error(err))
		return nil, t.View(), ToViewError(err, "")
	}
	if !res.Success {
		return res, t.View(), &entity.ViewError{Kind: entity.ViewErrorServer, Message: res.Message}
	}

	t.mu.Lock()
	t.page = 1
	t.mu.Unlock()
	view := t.Load(ctx)
	t.observer.RegisterChanged(ctx, t.sessionID)
	return res, view, nil
}

func (t *RegisterTable) findLotLocked(lotID int) *textileapi.LotRegisterItem {
	for i := range t.rows {
		if t.rows[i].LotID != nil && *t.rows[i].LotID == lotID {
			return &t.rows[i]
		}
	}
	return nil
}

// applyLocked 已确认的值写入该批次的所有行
func (t *RegisterTable) applyLocked(lotID int, field, value string) {
	for i := range t.rows {
		if t.rows[i].LotID != nil && *t.rows[i].LotID == lotID {
			setCellValue(&t.rows[i], field, value)
		}
	}
}

func (t *RegisterTable) snapshotLocked() entity.RegisterView {
	view := entity.RegisterView{
		Filter:     t.filter,
		Filters:    entity.RegisterFilters,
		Rows:       make([]entity.RegisterRow, 0, len(t.rows)),
		Totals:     t.totals,
		Page:       buildPageInfo(t.page, t.pageSize, t.total, len(t.rows)),
		Loading:    t.loading,
		Generation: t.generation,
		Error:      t.err,
	}
	for _, item := range t.rows {
		row := entity.RegisterRow{LotRegisterItem: item}
		if item.LotID != nil {
			for _, field := range entity.EditableFields {
				edit, ok := t.edits[cellKey(*item.LotID, field)]
				if !ok {
					continue
				}
				// 进行中的编辑乐观显示新值
				if edit.State == entity.EditPending {
					setCellValue(&row.LotRegisterItem, field, edit.Value)
				}
				row.Edits = append(row.Edits, *edit)
			}
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// buildPageInfo 总数只取后端 total；缺失时仅在整页返回时允许下一页
func buildPageInfo(page, pageSize int, total *int, rowCount int) entity.PageInfo {
	info := entity.PageInfo{
		Page:     page,
		PageSize: pageSize,
		HasPrev:  page > 1,
	}
	if total != nil {
		info.Total = *total
		info.TotalKnown = true
		if pageSize > 0 {
			info.TotalPages = (*total + pageSize - 1) / pageSize
		}
		info.HasNext = page < info.TotalPages
		return info
	}
	info.HasNext = rowCount > 0 && rowCount >= pageSize
	return info
}

func cellKey(lotID int, field string) string {
	return strconv.Itoa(lotID) + "|" + field
}

// normalizeCellValue 校验并规范化输入，空值表示清空
func normalizeCellValue(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	switch field {
	case textileapi.FieldActualPieces:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return "", validationError("actual_pieces must be a non-negative whole number")
		}
		return strconv.Itoa(n), nil
	case textileapi.FieldDeliveryDate:
		d, err := time.Parse("2006-01-02", value)
		if err != nil {
			return "", validationError("delivery_date must be a date in YYYY-MM-DD")
		}
		return d.Format("2006-01-02"), nil
	}
	return value, nil
}

func cellValue(row textileapi.LotRegisterItem, field string) string {
	switch field {
	case textileapi.FieldBillNumber:
		return row.BillNo
	case textileapi.FieldActualPieces:
		if row.ActualPieces == nil {
			return ""
		}
		return strconv.Itoa(*row.ActualPieces)
	case textileapi.FieldDeliveryDate:
		return row.DeliveryDate
	}
	return ""
}

func setCellValue(row *textileapi.LotRegisterItem, field, value string) {
	switch field {
	case textileapi.FieldBillNumber:
		row.BillNo = value
	case textileapi.FieldActualPieces:
		if value == "" {
			row.ActualPieces = nil
			return
		}
		n, _ := strconv.Atoi(value)
		row.ActualPieces = &n
	case textileapi.FieldDeliveryDate:
		row.DeliveryDate = value
	}
}
