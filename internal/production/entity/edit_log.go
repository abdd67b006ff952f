package entity

import "time"

// LotFieldEdit 行内编辑日志
type LotFieldEdit struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	EditID    string    `json:"edit_id" gorm:"size:36;not null;index"`
	SessionID string    `json:"session_id" gorm:"size:64;not null;index"`
	UserID    string    `json:"user_id,omitempty" gorm:"size:64"`
	LotID     int       `json:"lot_id" gorm:"not null;index"`
	Field     string    `json:"field" gorm:"size:32;not null"`
	OldValue  string    `json:"old_value" gorm:"size:255"`
	NewValue  string    `json:"new_value" gorm:"size:255"`
	State     EditState `json:"state" gorm:"size:16;not null"` // committed / reverted
	Error     string    `json:"error,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

func (LotFieldEdit) TableName() string {
	return "lot_field_edits"
}
