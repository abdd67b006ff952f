package service

import (
	"context"
	"sync"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"go.uber.org/zap"
)

// LotReportService 批次登记报表（只读，每个会话一个）
type LotReportService struct {
	mu        sync.Mutex
	client    *textileapi.Client
	logger    *zap.Logger
	sessionID string
	pageSize  int

	generation uint64
	view       entity.LotReportView
	loaded     bool
}

// NewLotReportService 创建批次登记报表
func NewLotReportService(client *textileapi.Client, logger *zap.Logger, sessionID string, pageSize int) *LotReportService {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = 20
	}
	return &LotReportService{
		client:    client,
		logger:    logger,
		sessionID: sessionID,
		pageSize:  pageSize,
		view:      entity.LotReportView{Rows: []entity.LotReportRow{}},
	}
}

// Page 加载一页；page<1 按1，pageSize 为0时沿用上次
// 只采用最后一次请求的结果
func (s *LotReportService) Page(ctx context.Context, page, pageSize int) entity.LotReportView {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	s.pageSize = pageSize
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	resp, err := s.client.LotRegister(ctx, textileapi.LotRegisterQuery{Page: page, PageSize: pageSize})

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("Discard stale lot register report response",
			zap.String("session_id", s.sessionID),
			zap.Int("page", page),
			zap.Uint64("generation", gen),
			zap.Uint64("current", s.generation))
		return s.view
	}
	if err != nil {
		s.logger.Error("Fetch lot register report failed",
			zap.String("session_id", s.sessionID),
			zap.Int("page", page),
			zap.Error(err))
		s.view = entity.LotReportView{
			Rows:  []entity.LotReportRow{},
			Page:  buildPageInfo(page, pageSize, nil, 0),
			Error: ToViewError(err, RetryLotReport),
		}
		s.loaded = false
		return s.view
	}

	rows := make([]entity.LotReportRow, 0, len(resp.Items))
	for _, it := range resp.Items {
		rows = append(rows, entity.LotReportRow{LotRegisterItem: it, Badge: entity.BadgeFor(it.Status)})
	}
	s.view = entity.LotReportView{
		Rows: rows,
		Totals: entity.RegisterTotals{
			TotalLots:      resp.TotalLots,
			TotalPieces:    resp.TotalPieces,
			TotalDelivered: resp.TotalDelivered,
		},
		Page: buildPageInfo(page, pageSize, resp.Total, len(rows)),
	}
	s.loaded = true
	return s.view
}

// View 最近一次加载的结果
func (s *LotReportService) View() entity.LotReportView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// ExportCSV 导出当前页
func (s *LotReportService) ExportCSV() (*ExportFile, error) {
	rows, err := s.loadedRows()
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		FileName:    exportName("lot_register", "csv"),
		ContentType: ContentTypeCSV,
		Data:        LotReportCSV(rows),
	}, nil
}

// ExportXLSX 导出当前页为Excel
func (s *LotReportService) ExportXLSX() (*ExportFile, error) {
	rows, err := s.loadedRows()
	if err != nil {
		return nil, err
	}
	data, err := LotReportXLSX(rows)
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		FileName:    exportName("lot_register", "xlsx"),
		ContentType: ContentTypeXLSX,
		Data:        data,
	}, nil
}

func (s *LotReportService) loadedRows() ([]entity.LotReportRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNothingLoaded
	}
	return s.view.Rows, nil
}
