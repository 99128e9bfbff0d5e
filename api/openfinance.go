package api

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"finbook/config"
	"finbook/database"
	"finbook/middleware"
	"finbook/models"
	"finbook/service"

	"github.com/gin-gonic/gin"
)

// OpenFinanceHandler 开放银行处理器
type OpenFinanceHandler struct {
	client *service.OpenFinanceClient
}

// NewOpenFinanceHandler 创建开放银行处理器
func NewOpenFinanceHandler() *OpenFinanceHandler {
	return &OpenFinanceHandler{
		client: service.NewOpenFinanceClient(&config.GetConfig().OpenFinance),
	}
}

// ConnectTokenRequest 连接令牌请求
type ConnectTokenRequest struct {
	ItemID string `json:"item_id"` // 非空表示更新已有连接的授权
}

// CreateConnectionRequest 登记连接请求
type CreateConnectionRequest struct {
	ItemID      string `json:"item_id" binding:"required"`
	Institution string `json:"institution" example:"某银行"`
}

// SyncRequest 同步请求
type SyncRequest struct {
	ConnectionID uint   `json:"connection_id" binding:"required"`
	StartDate    string `json:"start_date" example:"2024-01-01"` // 默认最近90天
	EndDate      string `json:"end_date" example:"2024-03-31"`
	Categorize   bool   `json:"categorize"` // 导入时是否套用分类规则
}

// checkEnabled 开放银行功能未启用时直接拒绝
func (h *OpenFinanceHandler) checkEnabled(c *gin.Context) bool {
	if !config.GetConfig().OpenFinance.Enabled {
		BadRequest(c, "开放银行功能未启用")
		return false
	}
	return true
}

// CreateConnectToken 获取连接令牌
// @Summary 获取连接令牌
// @Description 向聚合服务申请前端连接组件使用的一次性令牌
// @Tags 开放银行
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ConnectTokenRequest false "令牌参数"
// @Success 200 {object} Response "获取成功"
// @Failure 400 {object} Response "功能未启用"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "聚合服务错误"
// @Router /api/v1/openfinance/connect-token [post]
func (h *OpenFinanceHandler) CreateConnectToken(c *gin.Context) {
	if !h.checkEnabled(c) {
		return
	}

	var req ConnectTokenRequest
	_ = c.ShouldBindJSON(&req)

	apiKey, err := h.client.Authenticate()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "聚合服务认证失败"))
		return
	}

	token, err := h.client.CreateConnectToken(apiKey, req.ItemID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "获取连接令牌失败"))
		return
	}

	Success(c, gin.H{"access_token": token})
}

// ListConnections 获取连接列表
// @Summary 获取连接列表
// @Description 获取当前用户已登记的开放银行连接
// @Tags 开放银行
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Connection} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/openfinance/connections [get]
func (h *OpenFinanceHandler) ListConnections(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var connections []models.Connection
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&connections).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, connections)
}

// CreateConnection 登记连接
// @Summary 登记连接
// @Description 前端连接组件授权成功后，登记聚合服务返回的 item
// @Tags 开放银行
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateConnectionRequest true "连接信息"
// @Success 200 {object} Response{data=models.Connection} "登记成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/openfinance/connections [post]
func (h *OpenFinanceHandler) CreateConnection(c *gin.Context) {
	if !h.checkEnabled(c) {
		return
	}
	userID := middleware.GetCurrentUserID(c)

	var req CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 同一 item 不能重复登记
	var count int64
	database.DB.Model(&models.Connection{}).Where("item_id = ?", req.ItemID).Count(&count)
	if count > 0 {
		BadRequest(c, "该连接已登记")
		return
	}

	connection := models.Connection{
		UserID:      userID,
		ItemID:      req.ItemID,
		Institution: req.Institution,
		Status:      models.ConnectionStatusActive,
	}

	if err := database.DB.Create(&connection).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "登记连接失败"))
		return
	}

	SuccessWithMessage(c, "登记成功", connection)
}

// DeleteConnection 删除连接
// @Summary 删除连接
// @Description 删除指定的开放银行连接（已导入的交易记录保持不变）
// @Tags 开放银行
// @Produce json
// @Security BearerAuth
// @Param id path int true "连接ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "连接不存在"
// @Router /api/v1/openfinance/connections/{id} [delete]
func (h *OpenFinanceHandler) DeleteConnection(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var connection models.Connection
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&connection).Error; err != nil {
		NotFound(c, "连接不存在")
		return
	}

	if err := database.DB.Delete(&connection).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", gin.H{"id": connection.ID})
}

// Sync 同步交易
// @Summary 同步交易
// @Description 从聚合服务拉取指定连接的账户交易并导入为本地交易记录。按外部交易ID去重，可选导入时套用分类规则。
// @Tags 开放银行
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SyncRequest true "同步参数"
// @Success 200 {object} Response "同步成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "连接不存在"
// @Failure 500 {object} Response "聚合服务错误"
// @Router /api/v1/openfinance/sync [post]
func (h *OpenFinanceHandler) Sync(c *gin.Context) {
	if !h.checkEnabled(c) {
		return
	}
	userID := middleware.GetCurrentUserID(c)

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var connection models.Connection
	if err := database.DB.Where("id = ? AND user_id = ?", req.ConnectionID, userID).First(&connection).Error; err != nil {
		NotFound(c, "连接不存在")
		return
	}
	if connection.Status == models.ConnectionStatusRevoked {
		BadRequest(c, "连接授权已撤销，请重新授权")
		return
	}

	// 默认同步最近90天
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -90)
	if req.StartDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local)
		if err != nil {
			BadRequest(c, "start_date格式错误，应为: 2006-01-02")
			return
		}
		startDate = t
	}
	if req.EndDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.EndDate, time.Local)
		if err != nil {
			BadRequest(c, "end_date格式错误，应为: 2006-01-02")
			return
		}
		endDate = t.Add(24*time.Hour - time.Second)
	}

	apiKey, err := h.client.Authenticate()
	if err != nil {
		h.markSyncError(&connection)
		InternalError(c, SafeErrorMessage(err, "聚合服务认证失败"))
		return
	}

	accounts, err := h.client.ListAccounts(apiKey, connection.ItemID)
	if err != nil {
		h.markSyncError(&connection)
		InternalError(c, SafeErrorMessage(err, "拉取账户失败"))
		return
	}

	var categorizer *service.Categorizer
	if req.Categorize {
		categorizer = service.NewCategorizer(service.NewGormRuleStore(database.DB))
	}

	imported := 0
	skipped := 0
	for _, account := range accounts {
		externalTxns, err := h.client.ListTransactions(apiKey, account.ID, startDate, endDate)
		if err != nil {
			h.markSyncError(&connection)
			InternalError(c, SafeErrorMessage(err, "拉取交易失败"))
			return
		}

		for _, ext := range externalTxns {
			// 外部交易ID去重
			var count int64
			if err := database.DB.Model(&models.Transaction{}).
				Where("user_id = ? AND external_id = ?", userID, ext.ID).Count(&count).Error; err != nil {
				h.markSyncError(&connection)
				InternalError(c, SafeErrorMessage(err, "交易去重查询失败"))
				return
			}
			if count > 0 {
				skipped++
				continue
			}

			// 聚合服务的金额约定：负数为支出，正数为收入
			txnType := models.TransactionTypeExpense
			amount := ext.Amount
			if amount > 0 {
				txnType = models.TransactionTypeIncome
			} else {
				amount = -amount
			}

			category := "其他"
			if categorizer != nil {
				if suggestion, err := categorizer.Suggest(userID, ext.Description); err == nil && suggestion.Category != nil {
					category = *suggestion.Category
				}
			}

			transaction := models.Transaction{
				UserID:          userID,
				Type:            txnType,
				Amount:          amount,
				Category:        category,
				Description:     ext.Description,
				ExternalID:      ext.ID,
				TransactionTime: ext.Date,
			}
			if err := database.DB.Create(&transaction).Error; err != nil {
				InternalError(c, SafeErrorMessage(err, "导入交易失败"))
				return
			}
			imported++
		}
	}

	// 标记同步时间并恢复状态
	now := time.Now()
	database.DB.Model(&connection).Updates(map[string]interface{}{
		"status":         models.ConnectionStatusActive,
		"last_synced_at": now,
	})

	SuccessWithMessage(c, "同步成功", gin.H{
		"imported": imported,
		"skipped":  skipped,
		"accounts": len(accounts),
	})
}

// markSyncError 标记连接同步失败
func (h *OpenFinanceHandler) markSyncError(connection *models.Connection) {
	database.DB.Model(connection).Update("status", models.ConnectionStatusError)
}

// WebhookEvent 聚合服务的 Webhook 事件
type WebhookEvent struct {
	Event  string `json:"event"`
	ItemID string `json:"itemId"`
}

// Webhook 接收聚合服务回调
// @Summary 聚合服务 Webhook
// @Description 接收聚合服务的事件回调。校验请求签名后更新对应连接的状态。
// @Tags 开放银行
// @Accept json
// @Produce json
// @Param X-Webhook-Signature header string true "请求体的 HMAC-SHA256 签名（hex）"
// @Success 200 {object} Response "处理成功"
// @Failure 400 {object} Response "请求体错误"
// @Failure 401 {object} Response "签名校验失败"
// @Router /api/v1/openfinance/webhook [post]
func (h *OpenFinanceHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		BadRequest(c, "读取请求体失败")
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	secret := config.GetConfig().OpenFinance.WebhookSecret
	if !service.VerifyWebhookSignature(secret, body, signature) {
		Unauthorized(c, "签名校验失败")
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		BadRequest(c, "请求体格式错误")
		return
	}

	if event.ItemID == "" {
		Success(c, gin.H{"handled": false})
		return
	}

	var connection models.Connection
	if err := database.DB.Where("item_id = ?", event.ItemID).First(&connection).Error; err != nil {
		// 未登记的 item 直接忽略，聚合服务不需要重试
		Success(c, gin.H{"handled": false})
		return
	}

	switch event.Event {
	case "item/deleted", "item/login_error":
		database.DB.Model(&connection).Update("status", models.ConnectionStatusRevoked)
	case "item/updated", "transactions/created":
		now := time.Now()
		database.DB.Model(&connection).Updates(map[string]interface{}{
			"status":         models.ConnectionStatusActive,
			"last_synced_at": now,
		})
	}

	Success(c, gin.H{"handled": true})
}
