package api

import (
	"strconv"

	"finbook/database"
	"finbook/middleware"
	"finbook/models"
	"finbook/service"

	"github.com/gin-gonic/gin"
)

// CategorizationHandler 分类规则与建议处理器
type CategorizationHandler struct{}

// NewCategorizationHandler 创建分类规则处理器
func NewCategorizationHandler() *CategorizationHandler {
	return &CategorizationHandler{}
}

// SuggestRequest 分类建议请求
type SuggestRequest struct {
	Description string `json:"description" example:"UBER EATS SP"`
}

// CreateRuleRequest 创建规则请求
type CreateRuleRequest struct {
	Pattern  string `json:"pattern" binding:"required,min=1,max=100" example:"uber"`
	Category string `json:"category" binding:"required,min=1,max=50" example:"交通"`
}

// UpdateRuleRequest 更新规则请求
type UpdateRuleRequest struct {
	Pattern  string `json:"pattern" binding:"omitempty,min=1,max=100" example:"uber"`
	Category string `json:"category" binding:"omitempty,min=1,max=50" example:"交通"`
	IsActive *bool  `json:"is_active"`
}

// Suggest 根据交易描述给出分类建议
// @Summary 获取分类建议
// @Description 根据交易描述匹配当前用户的分类规则，返回建议的类别。规则按历史命中次数降序匹配，命中的规则计数加一。描述为空或无规则命中时 category 返回 null，不算错误。
// @Tags 分类规则
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SuggestRequest true "交易描述"
// @Success 200 {object} Response{data=service.Suggestion} "获取成功，category 为 null 表示无建议"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/v1/categorization/suggest [post]
func (h *CategorizationHandler) Suggest(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if userID == 0 {
		Unauthorized(c, "请先登录")
		return
	}

	// 请求体缺失等同于空描述，走快速路径返回无建议
	var req SuggestRequest
	_ = c.ShouldBindJSON(&req)

	categorizer := service.NewCategorizer(service.NewGormRuleStore(database.DB))
	result, err := categorizer.Suggest(userID, req.Description)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "获取分类建议失败"))
		return
	}

	Success(c, result)
}

// ListRules 获取当前用户的分类规则列表
// @Summary 获取分类规则列表
// @Description 获取当前用户的全部分类规则，按命中次数降序排列
// @Tags 分类规则
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.CategoryRule} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categorization/rules [get]
func (h *CategorizationHandler) ListRules(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var rules []models.CategoryRule
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("match_count DESC, id ASC").
		Find(&rules).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, rules)
}

// CreateRule 创建分类规则
// @Summary 创建分类规则
// @Description 创建一条新的分类规则。pattern 会统一转为小写保存，保证匹配时大小写无关。
// @Tags 分类规则
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRuleRequest true "规则信息"
// @Success 200 {object} Response{data=models.CategoryRule} "创建成功"
// @Failure 400 {object} Response "参数错误或规则已存在"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categorization/rules [post]
func (h *CategorizationHandler) CreateRule(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	pattern := service.NormalizePattern(req.Pattern)
	if pattern == "" {
		BadRequest(c, "pattern 不能为空")
		return
	}

	// 同一用户下 pattern 唯一
	var existing models.CategoryRule
	if err := database.DB.Where("user_id = ? AND pattern = ?", userID, pattern).First(&existing).Error; err == nil {
		BadRequest(c, "相同 pattern 的规则已存在")
		return
	}

	rule := models.CategoryRule{
		UserID:   userID,
		Pattern:  pattern,
		Category: req.Category,
		IsActive: true,
	}
	if err := database.DB.Create(&rule).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建规则失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", rule)
}

// UpdateRule 更新分类规则（含启用/停用切换）
// @Summary 更新分类规则
// @Description 更新指定规则的 pattern、类别或启用状态。只能操作自己的规则，否则返回 404。
// @Tags 分类规则
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "规则ID"
// @Param request body UpdateRuleRequest true "更新内容"
// @Success 200 {object} Response{data=models.CategoryRule} "更新成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "规则不存在"
// @Router /api/v1/categorization/rules/{id} [put]
func (h *CategorizationHandler) UpdateRule(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	// 规则不存在和不属于当前用户统一返回 404，不泄露其他用户规则的存在性
	var rule models.CategoryRule
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&rule).Error; err != nil {
		NotFound(c, "规则不存在")
		return
	}

	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Pattern != "" {
		pattern := service.NormalizePattern(req.Pattern)
		if pattern == "" {
			BadRequest(c, "pattern 不能为空")
			return
		}
		updates["pattern"] = pattern
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		BadRequest(c, "没有需要更新的字段")
		return
	}

	if err := database.DB.Model(&rule).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新规则失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", rule)
}

// DeleteRule 删除分类规则
// @Summary 删除分类规则
// @Description 删除指定规则。只能操作自己的规则，否则返回 404。
// @Tags 分类规则
// @Produce json
// @Security BearerAuth
// @Param id path int true "规则ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "规则不存在"
// @Router /api/v1/categorization/rules/{id} [delete]
func (h *CategorizationHandler) DeleteRule(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var rule models.CategoryRule
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&rule).Error; err != nil {
		NotFound(c, "规则不存在")
		return
	}

	if err := database.DB.Delete(&rule).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除规则失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", gin.H{"id": rule.ID})
}
