package service

import (
	"errors"

	"github.com/shopspring/decimal"
)

// 投资预测参数限制
const (
	MaxProjectionMonths = 600 // 最多预测50年
)

var (
	ErrInvalidMonths = errors.New("预测月数必须在 1 到 600 之间")
	ErrNegativeInput = errors.New("金额和收益率不能为负数")
)

// ProjectionPoint 逐月预测结果
type ProjectionPoint struct {
	Month       int             `json:"month"`
	Balance     decimal.Decimal `json:"balance"`
	Contributed decimal.Decimal `json:"contributed"` // 累计投入（本金+追加）
	Earnings    decimal.Decimal `json:"earnings"`    // 累计收益
}

// ProjectionResult 投资预测结果
type ProjectionResult struct {
	Principal           decimal.Decimal   `json:"principal"`
	MonthlyContribution decimal.Decimal   `json:"monthly_contribution"`
	AnnualRate          decimal.Decimal   `json:"annual_rate"`
	Months              int               `json:"months"`
	FinalBalance        decimal.Decimal   `json:"final_balance"`
	TotalContributed    decimal.Decimal   `json:"total_contributed"`
	TotalEarnings       decimal.Decimal   `json:"total_earnings"`
	Points              []ProjectionPoint `json:"points"`
}

// ProjectGrowth 按月复利计算投资增长。
// 每月先按月利率计息，再计入当月追加投入。金额保留两位小数。
func ProjectGrowth(principal, monthlyContribution, annualRate decimal.Decimal, months int) (*ProjectionResult, error) {
	if months <= 0 || months > MaxProjectionMonths {
		return nil, ErrInvalidMonths
	}
	if principal.IsNegative() || monthlyContribution.IsNegative() || annualRate.IsNegative() {
		return nil, ErrNegativeInput
	}

	// 月利率 = 年化收益率 / 12
	monthlyRate := annualRate.Div(decimal.NewFromInt(12))

	balance := principal
	contributed := principal
	points := make([]ProjectionPoint, 0, months)

	for m := 1; m <= months; m++ {
		interest := balance.Mul(monthlyRate).Round(2)
		balance = balance.Add(interest).Add(monthlyContribution)
		contributed = contributed.Add(monthlyContribution)

		points = append(points, ProjectionPoint{
			Month:       m,
			Balance:     balance.Round(2),
			Contributed: contributed.Round(2),
			Earnings:    balance.Sub(contributed).Round(2),
		})
	}

	return &ProjectionResult{
		Principal:           principal.Round(2),
		MonthlyContribution: monthlyContribution.Round(2),
		AnnualRate:          annualRate,
		Months:              months,
		FinalBalance:        balance.Round(2),
		TotalContributed:    contributed.Round(2),
		TotalEarnings:       balance.Sub(contributed).Round(2),
		Points:              points,
	}, nil
}
