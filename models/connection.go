package models

import (
	"time"

	"gorm.io/gorm"
)

// 开放银行连接状态常量
const (
	ConnectionStatusActive  = "active"  // 正常
	ConnectionStatusError   = "error"   // 同步出错
	ConnectionStatusRevoked = "revoked" // 用户已撤销授权
)

// Connection 开放银行连接（聚合服务侧的 item）
type Connection struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"user_id" gorm:"index;not null"`
	ItemID       string         `json:"item_id" gorm:"size:64;uniqueIndex;not null"` // 聚合服务分配的 item 标识
	Institution  string         `json:"institution" gorm:"size:100"`
	Status       string         `json:"status" gorm:"size:20;default:active;index"`
	LastSyncedAt *time.Time     `json:"last_synced_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
	User         User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Connection) TableName() string {
	return "connections"
}
