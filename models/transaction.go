package models

import (
	"time"

	"gorm.io/gorm"
)

// 交易类型常量
const (
	TransactionTypeExpense = "expense" // 支出
	TransactionTypeIncome  = "income"  // 收入
)

// Transaction 交易记录模型
type Transaction struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"index;not null"`
	AccountID       *uint          `json:"account_id" gorm:"index"` // 关联的银行账户，可为空
	CardID          *uint          `json:"card_id" gorm:"index"`    // 关联的信用卡，可为空
	Type            string         `json:"type" gorm:"size:20;not null;default:expense;index"` // expense/income
	Amount          float64        `json:"amount" gorm:"type:decimal(12,2);not null"`
	Category        string         `json:"category" gorm:"size:50;not null"`
	Description     string         `json:"description" gorm:"size:255"`
	TransactionTime time.Time      `json:"transaction_time" gorm:"not null;index"`
	ExternalID      string         `json:"external_id,omitempty" gorm:"size:64;index;default:''"` // 开放银行同步的外部交易ID，避免重复导入
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
	User            User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}
