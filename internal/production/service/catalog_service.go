package service

import (
	"context"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"go.uber.org/zap"
)

// CatalogService 客户、订单、批次的增删改查转发
type CatalogService struct {
	client *textileapi.Client
	master *MasterService
	logger *zap.Logger
}

// NewCatalogService 创建服务
func NewCatalogService(client *textileapi.Client, master *MasterService, logger *zap.Logger) *CatalogService {
	return &CatalogService{client: client, master: master, logger: logger}
}

// OrderCreated 订单创建结果；分配初始化失败时订单已保存，Warning 说明原因
type OrderCreated struct {
	Order   *textileapi.Order `json:"order"`
	Warning string            `json:"warning,omitempty"`
}

// ==================== 客户 ====================

func (s *CatalogService) ListParties(ctx context.Context, page, pageSize int) (*textileapi.PartyList, error) {
	return s.client.ListParties(ctx, page, pageSize)
}

func (s *CatalogService) SearchParties(ctx context.Context, q string, limit int) (*textileapi.PartySearchResult, error) {
	return s.client.SearchParties(ctx, q, limit)
}

func (s *CatalogService) GetParty(ctx context.Context, id int) (*textileapi.Party, error) {
	return s.client.GetParty(ctx, id)
}

// CreateParty 创建客户，清除下拉缓存
func (s *CatalogService) CreateParty(ctx context.Context, req *textileapi.PartyCreate) (*textileapi.Party, error) {
	party, err := s.client.CreateParty(ctx, req)
	if err != nil {
		return nil, err
	}
	s.master.Invalidate(ctx)
	return party, nil
}

func (s *CatalogService) UpdateParty(ctx context.Context, id int, req *textileapi.PartyUpdate) (*textileapi.Party, error) {
	party, err := s.client.UpdateParty(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.master.Invalidate(ctx)
	return party, nil
}

func (s *CatalogService) DeleteParty(ctx context.Context, id int) error {
	if err := s.client.DeleteParty(ctx, id); err != nil {
		return err
	}
	s.master.Invalidate(ctx)
	return nil
}

// ==================== 订单 ====================

func (s *CatalogService) ListOrders(ctx context.Context, page, pageSize int) (*textileapi.OrderList, error) {
	return s.client.ListOrders(ctx, page, pageSize)
}

func (s *CatalogService) SearchOrders(ctx context.Context, q string, limit int) (*textileapi.OrderSearchResult, error) {
	return s.client.SearchOrders(ctx, q, limit)
}

func (s *CatalogService) GetOrder(ctx context.Context, id int) (*textileapi.Order, error) {
	return s.client.GetOrder(ctx, id)
}

// CreateOrder 创建订单后初始化分配状态
func (s *CatalogService) CreateOrder(ctx context.Context, req *textileapi.OrderCreate) (*OrderCreated, error) {
	order, err := s.client.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	out := &OrderCreated{Order: order}
	if err := s.client.InitializeAllocation(ctx, order.ID); err != nil {
		s.logger.Warn("Initialize allocation failed",
			zap.Int("order_id", order.ID),
			zap.Error(err))
		out.Warning = "Order saved, but allocation tracking was not initialized: " + textileapi.Detail(err)
	}
	return out, nil
}

func (s *CatalogService) UpdateOrder(ctx context.Context, id int, req *textileapi.OrderUpdate) (*textileapi.Order, error) {
	return s.client.UpdateOrder(ctx, id, req)
}

func (s *CatalogService) DeleteOrder(ctx context.Context, id int) error {
	return s.client.DeleteOrder(ctx, id)
}

func (s *CatalogService) PreviewBeams(ctx context.Context, req *textileapi.BeamPreviewRequest) (*textileapi.BeamPreview, error) {
	return s.client.PreviewBeams(ctx, req)
}

func (s *CatalogService) BeamDetails(ctx context.Context) ([]textileapi.BeamDetail, error) {
	return s.client.BeamDetails(ctx)
}

// ==================== 批次 ====================

func (s *CatalogService) ListLots(ctx context.Context, page, pageSize int) (*textileapi.LotList, error) {
	return s.client.ListLots(ctx, page, pageSize)
}

func (s *CatalogService) GetLot(ctx context.Context, id int) (*textileapi.Lot, error) {
	return s.client.GetLot(ctx, id)
}

func (s *CatalogService) CreateLot(ctx context.Context, req *textileapi.LotCreate) (*textileapi.Lot, error) {
	return s.client.CreateLot(ctx, req)
}

func (s *CatalogService) UpdateLot(ctx context.Context, id int, req *textileapi.LotUpdate) (*textileapi.Lot, error) {
	return s.client.UpdateLot(ctx, id, req)
}

func (s *CatalogService) DeleteLot(ctx context.Context, id int) error {
	return s.client.DeleteLot(ctx, id)
}
