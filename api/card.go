package api

import (
	"strconv"
	"strings"

	"finbook/database"
	"finbook/middleware"
	"finbook/models"

	"github.com/gin-gonic/gin"
)

// CardHandler 信用卡处理器
type CardHandler struct{}

// NewCardHandler 创建信用卡处理器
func NewCardHandler() *CardHandler {
	return &CardHandler{}
}

// CreateCardRequest 创建信用卡请求
type CreateCardRequest struct {
	Name        string  `json:"name" binding:"required" example:"白金卡"`
	Brand       string  `json:"brand" example:"visa"`
	LastDigits  string  `json:"last_digits" binding:"omitempty,len=4,numeric" example:"1234"`
	CreditLimit float64 `json:"credit_limit" binding:"omitempty,gte=0" example:"10000"`
	ClosingDay  int     `json:"closing_day" binding:"omitempty,min=1,max=28" example:"5"`
	DueDay      int     `json:"due_day" binding:"omitempty,min=1,max=28" example:"15"`
}

// UpdateCardRequest 更新信用卡请求
type UpdateCardRequest struct {
	Name        string   `json:"name" example:"白金卡"`
	Brand       string   `json:"brand" example:"visa"`
	LastDigits  string   `json:"last_digits" binding:"omitempty,len=4,numeric" example:"1234"`
	CreditLimit *float64 `json:"credit_limit" binding:"omitempty" example:"10000"`
	ClosingDay  int      `json:"closing_day" binding:"omitempty,min=1,max=28" example:"5"`
	DueDay      int      `json:"due_day" binding:"omitempty,min=1,max=28" example:"15"`
}

// List 获取信用卡列表
// @Summary 获取信用卡列表
// @Description 获取当前用户的所有信用卡
// @Tags 信用卡
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Card} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/cards [get]
func (h *CardHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var cards []models.Card
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&cards).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, cards)
}

// Get 获取单张信用卡
// @Summary 获取单张信用卡
// @Description 根据ID获取信用卡详情
// @Tags 信用卡
// @Produce json
// @Security BearerAuth
// @Param id path int true "信用卡ID"
// @Success 200 {object} Response{data=models.Card} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "信用卡不存在"
// @Router /api/v1/cards/{id} [get]
func (h *CardHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var card models.Card
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&card).Error; err != nil {
		NotFound(c, "信用卡不存在")
		return
	}
	Success(c, card)
}

// Create 创建信用卡
// @Summary 创建信用卡
// @Description 添加一张新的信用卡
// @Tags 信用卡
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCardRequest true "信用卡信息"
// @Success 200 {object} Response{data=models.Card} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/cards [post]
func (h *CardHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "信用卡名称不能为空")
		return
	}
	if req.ClosingDay == 0 {
		req.ClosingDay = 1
	}
	if req.DueDay == 0 {
		req.DueDay = 10
	}

	card := models.Card{
		UserID:      userID,
		Name:        req.Name,
		Brand:       req.Brand,
		LastDigits:  req.LastDigits,
		CreditLimit: req.CreditLimit,
		ClosingDay:  req.ClosingDay,
		DueDay:      req.DueDay,
	}

	if err := database.DB.Create(&card).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建信用卡失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", card)
}

// Update 更新信用卡
// @Summary 更新信用卡
// @Description 更新指定信用卡的信息
// @Tags 信用卡
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "信用卡ID"
// @Param request body UpdateCardRequest true "信用卡信息"
// @Success 200 {object} Response{data=models.Card} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "信用卡不存在"
// @Router /api/v1/cards/{id} [put]
func (h *CardHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var card models.Card
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&card).Error; err != nil {
		NotFound(c, "信用卡不存在")
		return
	}

	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Brand != "" {
		updates["brand"] = req.Brand
	}
	if req.LastDigits != "" {
		updates["last_digits"] = req.LastDigits
	}
	if req.CreditLimit != nil {
		updates["credit_limit"] = *req.CreditLimit
	}
	if req.ClosingDay > 0 {
		updates["closing_day"] = req.ClosingDay
	}
	if req.DueDay > 0 {
		updates["due_day"] = req.DueDay
	}

	if len(updates) == 0 {
		Success(c, card)
		return
	}

	if err := database.DB.Model(&card).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", card)
}

// Delete 删除信用卡
// @Summary 删除信用卡
// @Description 删除指定信用卡（已关联的交易记录保持不变）
// @Tags 信用卡
// @Produce json
// @Security BearerAuth
// @Param id path int true "信用卡ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "信用卡不存在"
// @Router /api/v1/cards/{id} [delete]
func (h *CardHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var card models.Card
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&card).Error; err != nil {
		NotFound(c, "信用卡不存在")
		return
	}

	if err := database.DB.Delete(&card).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", gin.H{"id": card.ID})
}
