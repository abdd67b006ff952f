package service

import (
	"context"
	"errors"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/config"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/repository"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/sse"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Allocation *AllocationService
	Dashboard  *DashboardService
	Master     *MasterService
	Catalog    *CatalogService
	Archive    *ArchiveService
	Sessions   *SessionStore
}

// Deps 服务依赖；Repos、Redis、Archive 可为nil（对应功能关闭）
type Deps struct {
	Client  *textileapi.Client
	Repos   *repository.Repositories
	Redis   *redis.Client
	Archive *ArchiveService
	Hub     *sse.Hub
	Config  *config.Config
	Logger  *zap.Logger
}

// NewServices 创建服务集合
func NewServices(d Deps) *Services {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var journal *repository.EditLogRepository
	if d.Repos != nil {
		journal = d.Repos.EditLog
	}
	observer := NewEditNotifier(d.Hub, journal, logger)

	allocationSvc := NewAllocationService(d.Client, logger)
	masterSvc := NewMasterService(d.Client, d.Redis, d.Config.Console.MasterCacheTTL, logger)

	return &Services{
		Allocation: allocationSvc,
		Dashboard:  NewDashboardService(allocationSvc),
		Master:     masterSvc,
		Catalog:    NewCatalogService(d.Client, masterSvc, logger),
		Archive:    d.Archive,
		Sessions: NewSessionStore(SessionOptions{
			Client:          d.Client,
			Observer:        observer,
			Logger:          logger,
			DefaultPageSize: d.Config.Console.DefaultPageSize,
			TTL:             d.Config.Console.SessionTTL,
		}),
	}
}

// 重试入口（控制台接口）
const (
	RetryAllocationStatus    = "GET /api/v1/allocation/status"
	RetryAllocationAvailable = "GET /api/v1/allocation/available"
	RetryBeamSummary         = "GET /api/v1/dashboard"
	RetryRegister            = "POST /api/v1/register/reload"
	RetryPartywise           = "GET /api/v1/reports/partywise"
	RetryLotReport           = "GET /api/v1/reports/lot-register"
)

// ToViewError 后端/校验错误转换为页面错误
func ToViewError(err error, retry string) *entity.ViewError {
	if err == nil {
		return nil
	}
	var ve *entity.ViewError
	if errors.As(err, &ve) {
		return ve
	}
	switch {
	case errors.Is(err, textileapi.ErrInvalidRequest):
		return &entity.ViewError{
			Kind:    entity.ViewErrorValidation,
			Message: err.Error(),
		}
	case textileapi.IsTransport(err):
		return &entity.ViewError{
			Kind:      entity.ViewErrorTransport,
			Message:   "Backend unreachable, check the connection and retry",
			Retryable: true,
			Retry:     retry,
		}
	case textileapi.IsServer(err):
		return &entity.ViewError{
			Kind:       entity.ViewErrorServer,
			Message:    textileapi.Detail(err),
			StatusCode: textileapi.StatusCode(err),
			Retryable:  true,
			Retry:      retry,
		}
	}
	return &entity.ViewError{
		Kind:      entity.ViewErrorServer,
		Message:   err.Error(),
		Retryable: true,
		Retry:     retry,
	}
}

func validationError(msg string) *entity.ViewError {
	return &entity.ViewError{Kind: entity.ViewErrorValidation, Message: msg}
}

// ErrNothingLoaded 导出时当前会话还没有加载数据
var ErrNothingLoaded = errors.New("no report data loaded")

type userKey struct{}

// WithUser 在上下文中携带操作人，写入编辑日志
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

func userFrom(ctx context.Context) string {
	if v, ok := ctx.Value(userKey{}).(string); ok {
		return v
	}
	return ""
}
