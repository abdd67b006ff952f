package repository

import (
	"gorm.io/gorm"
)

// Repositories 仓库集合
type Repositories struct {
	EditLog *EditLogRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		EditLog: NewEditLogRepository(db),
	}
}
