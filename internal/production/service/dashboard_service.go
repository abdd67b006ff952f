package service

import (
	"context"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"golang.org/x/sync/errgroup"
)

// DashboardService 首页：并发获取分配状态和经轴汇总
type DashboardService struct {
	allocation *AllocationService
}

// NewDashboardService 创建首页服务
func NewDashboardService(allocation *AllocationService) *DashboardService {
	return &DashboardService{allocation: allocation}
}

// Load 任一请求失败时返回页面错误，已成功的部分照常返回
func (s *DashboardService) Load(ctx context.Context) *entity.DashboardView {
	view := &entity.DashboardView{}

	var g errgroup.Group
	g.Go(func() error {
		view.Allocation = s.allocation.Status(ctx, entity.AllocationFilter{})
		if v := view.Allocation.Error; v != nil && v.Kind != entity.ViewErrorInconsistency {
			return v
		}
		return nil
	})
	g.Go(func() error {
		view.BeamSummary = s.allocation.BeamSummary(ctx)
		if v := view.BeamSummary.Error; v != nil && v.Kind != entity.ViewErrorInconsistency {
			return v
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		view.Error = ToViewError(err, RetryBeamSummary)
	}
	return view
}
