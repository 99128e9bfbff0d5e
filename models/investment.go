package models

import (
	"time"

	"gorm.io/gorm"
)

// 投资类型常量
const (
	InvestmentTypeFixed  = "fixed"  // 固定收益
	InvestmentTypeFund   = "fund"   // 基金
	InvestmentTypeStock  = "stock"  // 股票
	InvestmentTypeCrypto = "crypto" // 加密货币
)

// Investment 投资记录模型
type Investment struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	UserID        uint           `json:"user_id" gorm:"index;not null"`
	Name          string         `json:"name" gorm:"size:100;not null"`
	Type          string         `json:"type" gorm:"size:20;not null;default:fixed"`
	InvestedValue float64        `json:"invested_value" gorm:"type:decimal(12,2);not null"` // 投入本金
	CurrentValue  float64        `json:"current_value" gorm:"type:decimal(12,2);not null"`  // 当前市值
	AnnualRate    float64        `json:"annual_rate" gorm:"type:decimal(6,4);default:0"`    // 预期年化收益率，如 0.105 表示 10.5%
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	User          User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Investment) TableName() string {
	return "investments"
}

// GetInvestmentTypes 获取所有投资类型
func GetInvestmentTypes() []string {
	return []string{
		InvestmentTypeFixed,
		InvestmentTypeFund,
		InvestmentTypeStock,
		InvestmentTypeCrypto,
	}
}
