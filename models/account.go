package models

import (
	"time"

	"gorm.io/gorm"
)

// 账户类型常量
const (
	AccountTypeChecking   = "checking"   // 活期账户
	AccountTypeSavings    = "savings"    // 储蓄账户
	AccountTypeInvestment = "investment" // 投资账户
)

// Account 银行账户模型
type Account struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"size:100;not null"`
	Bank      string         `json:"bank" gorm:"size:100"`
	Type      string         `json:"type" gorm:"size:20;not null;default:checking"` // checking/savings/investment
	Balance   float64        `json:"balance" gorm:"type:decimal(12,2);default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Account) TableName() string {
	return "accounts"
}

// GetAccountTypes 获取所有账户类型
func GetAccountTypes() []string {
	return []string{
		AccountTypeChecking,
		AccountTypeSavings,
		AccountTypeInvestment,
	}
}
