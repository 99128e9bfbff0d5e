package api

import (
	"strconv"
	"strings"

	"finbook/database"
	"finbook/middleware"
	"finbook/models"
	"finbook/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// InvestmentHandler 投资记录处理器
type InvestmentHandler struct{}

// NewInvestmentHandler 创建投资记录处理器
func NewInvestmentHandler() *InvestmentHandler {
	return &InvestmentHandler{}
}

// CreateInvestmentRequest 创建投资记录请求
type CreateInvestmentRequest struct {
	Name          string  `json:"name" binding:"required" example:"指数基金定投"`
	Type          string  `json:"type" binding:"omitempty,oneof=fixed fund stock crypto" example:"fund"`
	InvestedValue float64 `json:"invested_value" binding:"required,gt=0" example:"10000"`
	CurrentValue  float64 `json:"current_value" binding:"omitempty,gte=0" example:"10500"`
	AnnualRate    float64 `json:"annual_rate" binding:"omitempty,gte=0,lte=1" example:"0.105"`
}

// UpdateInvestmentRequest 更新投资记录请求
type UpdateInvestmentRequest struct {
	Name          string   `json:"name" example:"指数基金定投"`
	Type          string   `json:"type" binding:"omitempty,oneof=fixed fund stock crypto" example:"fund"`
	InvestedValue *float64 `json:"invested_value" binding:"omitempty,gt=0" example:"10000"`
	CurrentValue  *float64 `json:"current_value" binding:"omitempty,gte=0" example:"10500"`
	AnnualRate    *float64 `json:"annual_rate" binding:"omitempty,gte=0,lte=1" example:"0.105"`
}

// ProjectionRequest 投资预测请求
type ProjectionRequest struct {
	Principal           float64 `json:"principal" binding:"omitempty,gte=0" example:"10000"`
	MonthlyContribution float64 `json:"monthly_contribution" binding:"omitempty,gte=0" example:"500"`
	AnnualRate          float64 `json:"annual_rate" binding:"omitempty,gte=0,lte=1" example:"0.105"`
	Months              int     `json:"months" binding:"required,min=1,max=600" example:"120"`
	InvestmentID        *uint   `json:"investment_id"` // 可选，从已有投资记录取本金和收益率
}

// List 获取投资记录列表
// @Summary 获取投资记录列表
// @Description 获取当前用户的所有投资记录及汇总
// @Tags 投资
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/investments [get]
func (h *InvestmentHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var investments []models.Investment
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&investments).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	// 汇总投入与市值
	totalInvested := decimal.Zero
	totalCurrent := decimal.Zero
	for _, inv := range investments {
		totalInvested = totalInvested.Add(decimal.NewFromFloat(inv.InvestedValue))
		totalCurrent = totalCurrent.Add(decimal.NewFromFloat(inv.CurrentValue))
	}

	Success(c, gin.H{
		"list":           investments,
		"total_invested": totalInvested.Round(2),
		"total_current":  totalCurrent.Round(2),
		"total_earnings": totalCurrent.Sub(totalInvested).Round(2),
	})
}

// Create 创建投资记录
// @Summary 创建投资记录
// @Description 添加一条新的投资记录
// @Tags 投资
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateInvestmentRequest true "投资记录信息"
// @Success 200 {object} Response{data=models.Investment} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/investments [post]
func (h *InvestmentHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "投资名称不能为空")
		return
	}
	if req.Type == "" {
		req.Type = models.InvestmentTypeFixed
	}
	// 未填当前市值时默认等于投入本金
	if req.CurrentValue == 0 {
		req.CurrentValue = req.InvestedValue
	}

	investment := models.Investment{
		UserID:        userID,
		Name:          req.Name,
		Type:          req.Type,
		InvestedValue: req.InvestedValue,
		CurrentValue:  req.CurrentValue,
		AnnualRate:    req.AnnualRate,
	}

	if err := database.DB.Create(&investment).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建投资记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", investment)
}

// Update 更新投资记录
// @Summary 更新投资记录
// @Description 更新指定投资记录（如定期更新当前市值）
// @Tags 投资
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "投资记录ID"
// @Param request body UpdateInvestmentRequest true "投资记录信息"
// @Success 200 {object} Response{data=models.Investment} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "投资记录不存在"
// @Router /api/v1/investments/{id} [put]
func (h *InvestmentHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var investment models.Investment
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&investment).Error; err != nil {
		NotFound(c, "投资记录不存在")
		return
	}

	var req UpdateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.InvestedValue != nil {
		updates["invested_value"] = *req.InvestedValue
	}
	if req.CurrentValue != nil {
		updates["current_value"] = *req.CurrentValue
	}
	if req.AnnualRate != nil {
		updates["annual_rate"] = *req.AnnualRate
	}

	if len(updates) == 0 {
		Success(c, investment)
		return
	}

	if err := database.DB.Model(&investment).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", investment)
}

// Delete 删除投资记录
// @Summary 删除投资记录
// @Description 删除指定投资记录
// @Tags 投资
// @Produce json
// @Security BearerAuth
// @Param id path int true "投资记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "投资记录不存在"
// @Router /api/v1/investments/{id} [delete]
func (h *InvestmentHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var investment models.Investment
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&investment).Error; err != nil {
		NotFound(c, "投资记录不存在")
		return
	}

	if err := database.DB.Delete(&investment).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", gin.H{"id": investment.ID})
}

// Project 投资收益预测
// @Summary 投资收益预测
// @Description 按月复利计算投资增长，支持每月追加投入。可传 investment_id 直接使用已有投资记录的本金和年化收益率。
// @Tags 投资
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProjectionRequest true "预测参数"
// @Success 200 {object} Response{data=service.ProjectionResult} "预测成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "投资记录不存在"
// @Router /api/v1/investments/projection [post]
func (h *InvestmentHandler) Project(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	principal := decimal.NewFromFloat(req.Principal)
	annualRate := decimal.NewFromFloat(req.AnnualRate)

	// 指定投资记录时，以记录的市值和收益率为准
	if req.InvestmentID != nil {
		var investment models.Investment
		if err := database.DB.Where("id = ? AND user_id = ?", *req.InvestmentID, userID).First(&investment).Error; err != nil {
			NotFound(c, "投资记录不存在")
			return
		}
		principal = decimal.NewFromFloat(investment.CurrentValue)
		annualRate = decimal.NewFromFloat(investment.AnnualRate)
	}

	result, err := service.ProjectGrowth(principal, decimal.NewFromFloat(req.MonthlyContribution), annualRate, req.Months)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	Success(c, result)
}
