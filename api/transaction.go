package api

import (
	"strconv"
	"strings"
	"time"

	"finbook/database"
	"finbook/middleware"
	"finbook/models"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 交易记录处理器
type TransactionHandler struct{}

// NewTransactionHandler 创建交易记录处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// CreateTransactionRequest 创建交易记录请求
type CreateTransactionRequest struct {
	Type            string  `json:"type" binding:"omitempty,oneof=expense income" example:"expense"`
	Amount          float64 `json:"amount" binding:"required,gt=0" example:"99.99"`
	Category        string  `json:"category" binding:"required" example:"餐饮"`
	Description     string  `json:"description" example:"午餐"`
	AccountID       *uint   `json:"account_id"`
	CardID          *uint   `json:"card_id"`
	TransactionTime string  `json:"transaction_time" binding:"required" example:"2024-01-15 12:30:00"`
}

// UpdateTransactionRequest 更新交易记录请求
type UpdateTransactionRequest struct {
	Amount          float64 `json:"amount" binding:"omitempty,gt=0" example:"99.99"`
	Category        string  `json:"category" example:"餐饮"`
	Description     *string `json:"description" example:"午餐"`
	AccountID       *uint   `json:"account_id"`
	CardID          *uint   `json:"card_id"`
	TransactionTime string  `json:"transaction_time" example:"2024-01-15 12:30:00"`
}

// TransactionListRequest 交易记录列表请求
type TransactionListRequest struct {
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" example:"10"`
	Type      string `form:"type" example:"expense"`
	Category  string `form:"category" example:"餐饮"`
	AccountID uint   `form:"account_id"`
	CardID    uint   `form:"card_id"`
	StartTime string `form:"start_time" example:"2024-01-01"`
	EndTime   string `form:"end_time" example:"2024-12-31"`
}

// validateCategory 校验类别属于当前用户
func validateCategory(userID uint, name string) bool {
	var cat models.Category
	return database.DB.Where("user_id = ? AND name = ?", userID, name).First(&cat).Error == nil
}

// validateAccount 校验账户属于当前用户
func validateAccount(userID, accountID uint) bool {
	var account models.Account
	return database.DB.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error == nil
}

// validateCard 校验信用卡属于当前用户
func validateCard(userID, cardID uint) bool {
	var card models.Card
	return database.DB.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error == nil
}

// Create 创建交易记录
// @Summary 创建交易记录
// @Description 创建一条新的交易记录（支出或收入），可选关联银行账户或信用卡
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易记录信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if req.Type == "" {
		req.Type = models.TransactionTypeExpense
	}

	// 校验类别是否存在（每个用户独立维护类别）
	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		BadRequest(c, "类别不能为空")
		return
	}
	if !validateCategory(userID, req.Category) {
		BadRequest(c, "无效的类别，请先创建该类别")
		return
	}

	// 账户和信用卡只能二选一
	if req.AccountID != nil && req.CardID != nil {
		BadRequest(c, "账户和信用卡只能关联其中一个")
		return
	}
	if req.AccountID != nil && !validateAccount(userID, *req.AccountID) {
		BadRequest(c, "无效的账户")
		return
	}
	if req.CardID != nil && !validateCard(userID, *req.CardID) {
		BadRequest(c, "无效的信用卡")
		return
	}

	// 解析时间
	transactionTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.TransactionTime, time.Local)
	if err != nil {
		BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}

	transaction := models.Transaction{
		UserID:          userID,
		AccountID:       req.AccountID,
		CardID:          req.CardID,
		Type:            req.Type,
		Amount:          req.Amount,
		Category:        req.Category,
		Description:     req.Description,
		TransactionTime: transactionTime,
	}

	if err := database.DB.Create(&transaction).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建交易记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", transaction)
}

// List 获取交易记录列表
// @Summary 获取交易记录列表
// @Description 获取当前用户的交易记录列表，支持分页和类型/类别/账户/时间筛选
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param type query string false "类型筛选 expense/income"
// @Param category query string false "类别筛选"
// @Param account_id query int false "账户筛选"
// @Param card_id query int false "信用卡筛选"
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.AccountID > 0 {
		query = query.Where("account_id = ?", req.AccountID)
	}
	if req.CardID > 0 {
		query = query.Where("card_id = ?", req.CardID)
	}

	// 时间范围筛选
	if req.StartTime != "" {
		startTime, err := time.ParseInLocation("2006-01-02", req.StartTime, time.Local)
		if err == nil {
			query = query.Where("transaction_time >= ?", startTime)
		}
	}
	if req.EndTime != "" {
		endTime, err := time.ParseInLocation("2006-01-02", req.EndTime, time.Local)
		if err == nil {
			// 包含结束日期当天
			endTime = endTime.Add(24*time.Hour - time.Second)
			query = query.Where("transaction_time <= ?", endTime)
		}
	}

	// 获取总数
	var total int64
	query.Count(&total)

	// 获取列表
	var transactions []models.Transaction
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("transaction_time DESC").Offset(offset).Limit(req.PageSize).Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     transactions,
	})
}

// Get 获取单条交易记录
// @Summary 获取单条交易记录
// @Description 根据ID获取交易记录详情
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var transaction models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&transaction).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, transaction)
}

// Update 更新交易记录
// @Summary 更新交易记录
// @Description 更新指定的交易记录
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Param request body UpdateTransactionRequest true "交易记录信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var transaction models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&transaction).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 更新字段
	updates := make(map[string]interface{})
	if req.Amount > 0 {
		updates["amount"] = req.Amount
	}
	if req.Category != "" {
		req.Category = strings.TrimSpace(req.Category)
		if !validateCategory(userID, req.Category) {
			BadRequest(c, "无效的类别，请先创建该类别")
			return
		}
		updates["category"] = req.Category
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.AccountID != nil {
		if !validateAccount(userID, *req.AccountID) {
			BadRequest(c, "无效的账户")
			return
		}
		updates["account_id"] = *req.AccountID
	}
	if req.CardID != nil {
		if !validateCard(userID, *req.CardID) {
			BadRequest(c, "无效的信用卡")
			return
		}
		updates["card_id"] = *req.CardID
	}
	if req.TransactionTime != "" {
		transactionTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.TransactionTime, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		updates["transaction_time"] = transactionTime
	}

	if len(updates) == 0 {
		BadRequest(c, "没有需要更新的字段")
		return
	}

	if err := database.DB.Model(&transaction).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", transaction)
}

// Delete 删除交易记录
// @Summary 删除交易记录
// @Description 删除指定的交易记录
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var transaction models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&transaction).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&transaction).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", gin.H{"id": transaction.ID})
}
