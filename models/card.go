package models

import (
	"time"

	"gorm.io/gorm"
)

// Card 信用卡模型
type Card struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"size:100;not null"`
	Brand       string         `json:"brand" gorm:"size:50"` // 卡组织，如 visa/mastercard
	LastDigits  string         `json:"last_digits" gorm:"size:4"`
	CreditLimit float64        `json:"credit_limit" gorm:"type:decimal(12,2);default:0"`
	ClosingDay  int            `json:"closing_day" gorm:"default:1"` // 账单日（每月几号）
	DueDay      int            `json:"due_day" gorm:"default:10"`    // 还款日（每月几号）
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Card) TableName() string {
	return "cards"
}
