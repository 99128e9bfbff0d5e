package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 消费类别（每个用户独立维护）
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"size:50;not null;index"`
	Sort      int            `json:"sort" gorm:"default:0;index"`
	Color     string         `json:"color" gorm:"size:20;default:#64748b"` // 颜色代码，如 #ef4444
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// GetDefaultCategories 获取新用户的默认类别
func GetDefaultCategories() []string {
	return []string{
		"餐饮",
		"交通",
		"购物",
		"娱乐",
		"医疗",
		"教育",
		"住房",
		"其他",
	}
}
