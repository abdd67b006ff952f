package service

import (
	"context"
	"time"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/repository"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EditObserver 接收行内编辑状态变化
type EditObserver interface {
	EditTransition(ctx context.Context, sessionID string, edit entity.CellEdit)
	RegisterChanged(ctx context.Context, sessionID string)
}

// EditNotifier 向所属会话推送SSE事件并写入编辑日志
type EditNotifier struct {
	hub     *sse.Hub
	journal *repository.EditLogRepository
	logger  *zap.Logger
}

// NewEditNotifier hub、journal 均可为nil
func NewEditNotifier(hub *sse.Hub, journal *repository.EditLogRepository, logger *zap.Logger) *EditNotifier {
	return &EditNotifier{hub: hub, journal: journal, logger: logger}
}

type editEvent struct {
	SessionID string `json:"session_id"`
	entity.CellEdit
}

func (n *EditNotifier) EditTransition(ctx context.Context, sessionID string, edit entity.CellEdit) {
	if n.hub != nil {
		n.hub.PublishToSession(sessionID, sse.EventLotEdit, editEvent{SessionID: sessionID, CellEdit: edit})
	}
	if n.journal == nil || edit.State == entity.EditPending {
		return
	}

	record := &entity.LotFieldEdit{
		ID:        uuid.New().String(),
		EditID:    edit.EditID,
		SessionID: sessionID,
		UserID:    userFrom(ctx),
		LotID:     edit.LotID,
		Field:     edit.Field,
		OldValue:  edit.Previous,
		NewValue:  edit.Value,
		State:     edit.State,
		Error:     edit.Error,
	}
	// 请求上下文可能已结束，日志单独给超时
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := n.journal.Create(writeCtx, record); err != nil {
		n.logger.Warn("Write lot edit journal failed",
			zap.Int("lot_id", edit.LotID),
			zap.String("field", edit.Field),
			zap.Error(err))
	}
}

// RegisterChanged 新批次对所有会话的登记表都可见，广播刷新提示
func (n *EditNotifier) RegisterChanged(ctx context.Context, sessionID string) {
	if n.hub != nil {
		n.hub.Publish(sse.EventRegisterReload, map[string]string{"session_id": sessionID})
	}
}
