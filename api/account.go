package api

import (
	"strconv"
	"strings"

	"finbook/database"
	"finbook/middleware"
	"finbook/models"

	"github.com/gin-gonic/gin"
)

// AccountHandler 银行账户处理器
type AccountHandler struct{}

// NewAccountHandler 创建银行账户处理器
func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

// CreateAccountRequest 创建账户请求
type CreateAccountRequest struct {
	Name    string  `json:"name" binding:"required" example:"工资卡"`
	Bank    string  `json:"bank" example:"招商银行"`
	Type    string  `json:"type" binding:"omitempty,oneof=checking savings investment" example:"checking"`
	Balance float64 `json:"balance" example:"1000.00"`
}

// UpdateAccountRequest 更新账户请求
type UpdateAccountRequest struct {
	Name    string   `json:"name" example:"工资卡"`
	Bank    string   `json:"bank" example:"招商银行"`
	Type    string   `json:"type" binding:"omitempty,oneof=checking savings investment" example:"checking"`
	Balance *float64 `json:"balance" example:"1000.00"`
}

// List 获取账户列表
// @Summary 获取账户列表
// @Description 获取当前用户的所有银行账户
// @Tags 银行账户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Account} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var accounts []models.Account
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&accounts).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, accounts)
}

// Get 获取单个账户
// @Summary 获取单个账户
// @Description 根据ID获取账户详情
// @Tags 银行账户
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Success 200 {object} Response{data=models.Account} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "账户不存在"
// @Router /api/v1/accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var account models.Account
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&account).Error; err != nil {
		NotFound(c, "账户不存在")
		return
	}
	Success(c, account)
}

// Create 创建账户
// @Summary 创建账户
// @Description 创建一个新的银行账户
// @Tags 银行账户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAccountRequest true "账户信息"
// @Success 200 {object} Response{data=models.Account} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "账户名称不能为空")
		return
	}
	if req.Type == "" {
		req.Type = models.AccountTypeChecking
	}

	account := models.Account{
		UserID:  userID,
		Name:    req.Name,
		Bank:    req.Bank,
		Type:    req.Type,
		Balance: req.Balance,
	}

	if err := database.DB.Create(&account).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建账户失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", account)
}

// Update 更新账户
// @Summary 更新账户
// @Description 更新指定账户的信息
// @Tags 银行账户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Param request body UpdateAccountRequest true "账户信息"
// @Success 200 {object} Response{data=models.Account} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "账户不存在"
// @Router /api/v1/accounts/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var account models.Account
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&account).Error; err != nil {
		NotFound(c, "账户不存在")
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Bank != "" {
		updates["bank"] = req.Bank
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.Balance != nil {
		updates["balance"] = *req.Balance
	}

	if len(updates) == 0 {
		Success(c, account)
		return
	}

	if err := database.DB.Model(&account).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", account)
}

// Delete 删除账户
// @Summary 删除账户
// @Description 删除指定账户（已关联的交易记录保持不变）
// @Tags 银行账户
// @Produce json
// @Security BearerAuth
// @Param id path int true "账户ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "账户不存在"
// @Router /api/v1/accounts/{id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var account models.Account
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&account).Error; err != nil {
		NotFound(c, "账户不存在")
		return
	}

	if err := database.DB.Delete(&account).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", gin.H{"id": account.ID})
}
