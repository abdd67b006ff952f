package repository

import (
	"context"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"gorm.io/gorm"
)

type EditLogRepository struct {
	db *gorm.DB
}

func NewEditLogRepository(db *gorm.DB) *EditLogRepository {
	return &EditLogRepository{db: db}
}

// Create 写入一条编辑记录
func (r *EditLogRepository) Create(ctx context.Context, edit *entity.LotFieldEdit) error {
	return r.db.WithContext(ctx).Create(edit).Error
}

// ListByLot 批次的编辑记录（最新在前）
func (r *EditLogRepository) ListByLot(ctx context.Context, lotID, limit int) ([]entity.LotFieldEdit, error) {
	var edits []entity.LotFieldEdit
	query := r.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&edits).Error
	return edits, err
}

// ListBySession 会话内的编辑记录
func (r *EditLogRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]entity.LotFieldEdit, error) {
	var edits []entity.LotFieldEdit
	query := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&edits).Error
	return edits, err
}

// CountByState 按状态统计（committed / reverted）
func (r *EditLogRepository) CountByState(ctx context.Context, lotID int) (map[entity.EditState]int64, error) {
	var rows []struct {
		State entity.EditState
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.LotFieldEdit{}).
		Select("state, COUNT(*) AS count").
		Where("lot_id = ?", lotID).
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[entity.EditState]int64, len(rows))
	for _, row := range rows {
		out[row.State] = row.Count
	}
	return out, nil
}
