package models

import (
	"time"

	"gorm.io/gorm"
)

// CategoryRule 分类规则模型
// 每条规则属于一个用户，pattern 统一以小写形式存储（创建/更新时归一化），
// match_count 记录该规则被选中的次数，用于排序：次数越多优先级越高。
type CategoryRule struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	Pattern    string         `json:"pattern" gorm:"size:100;not null"`
	Category   string         `json:"category" gorm:"size:50;not null"`
	IsActive   bool           `json:"is_active" gorm:"default:true;index"`
	MatchCount uint           `json:"match_count" gorm:"default:0;index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	User       User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (CategoryRule) TableName() string {
	return "category_rules"
}
