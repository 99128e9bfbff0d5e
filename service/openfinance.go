package service

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"finbook/config"
)

// OpenFinanceClient 开放银行聚合服务客户端
// 聚合服务负责连接各银行机构；本客户端只做认证、拉取账户/交易和连接令牌的透传
type OpenFinanceClient struct {
	cfg        *config.OpenFinanceConfig
	httpClient *http.Client
}

// NewOpenFinanceClient 创建开放银行客户端
func NewOpenFinanceClient(cfg *config.OpenFinanceConfig) *OpenFinanceClient {
	return &OpenFinanceClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// AuthResponse 认证响应
type AuthResponse struct {
	APIKey  string `json:"apiKey"`
	Message string `json:"message,omitempty"`
}

// ConnectTokenResponse 连接令牌响应
type ConnectTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// ExternalAccount 聚合服务返回的账户
type ExternalAccount struct {
	ID      string  `json:"id"`
	ItemID  string  `json:"itemId"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Balance float64 `json:"balance"`
}

// ExternalTransaction 聚合服务返回的交易
type ExternalTransaction struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
}

// listResponse 聚合服务的分页列表包装
type listResponse[T any] struct {
	Total   int `json:"total"`
	Results []T `json:"results"`
}

// Authenticate 使用 client_id/client_secret 换取 API Key
func (c *OpenFinanceClient) Authenticate() (string, error) {
	payload, _ := json.Marshal(map[string]string{
		"clientId":     c.cfg.ClientID,
		"clientSecret": c.cfg.ClientSecret,
	})

	resp, err := c.httpClient.Post(c.cfg.BaseURL+"/auth", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("请求聚合服务失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}

	var authResp AuthResponse
	if err := json.Unmarshal(data, &authResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if authResp.APIKey == "" {
		msg := authResp.Message
		if msg == "" {
			msg = string(data)
		}
		return "", fmt.Errorf("聚合服务认证失败: %s", msg)
	}
	return authResp.APIKey, nil
}

// CreateConnectToken 创建前端连接组件使用的一次性令牌
// itemID 非空表示更新已有连接的授权
func (c *OpenFinanceClient) CreateConnectToken(apiKey, itemID string) (string, error) {
	body := map[string]string{}
	if itemID != "" {
		body["itemId"] = itemID
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequest("POST", c.cfg.BaseURL+"/connect_token", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求聚合服务失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}

	var tokenResp ConnectTokenResponse
	if err := json.Unmarshal(data, &tokenResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("聚合服务返回错误: %s", string(data))
	}
	return tokenResp.AccessToken, nil
}

// ListAccounts 拉取指定连接下的全部账户
func (c *OpenFinanceClient) ListAccounts(apiKey, itemID string) ([]ExternalAccount, error) {
	endpoint := fmt.Sprintf("%s/accounts?itemId=%s", c.cfg.BaseURL, url.QueryEscape(itemID))
	var list listResponse[ExternalAccount]
	if err := c.getJSON(apiKey, endpoint, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// ListTransactions 拉取指定账户在时间范围内的交易
func (c *OpenFinanceClient) ListTransactions(apiKey, accountID string, from, to time.Time) ([]ExternalTransaction, error) {
	endpoint := fmt.Sprintf("%s/transactions?accountId=%s&from=%s&to=%s",
		c.cfg.BaseURL,
		url.QueryEscape(accountID),
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
	)
	var list listResponse[ExternalTransaction]
	if err := c.getJSON(apiKey, endpoint, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// getJSON 带 API Key 的 GET 请求并解析 JSON
func (c *OpenFinanceClient) getJSON(apiKey, endpoint string, out interface{}) error {
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("X-API-KEY", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求聚合服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("聚合服务返回 %d: %s", resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

// SignWebhookPayload 计算 Webhook 请求体的 HMAC-SHA256 签名（hex 编码）
func SignWebhookPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature 校验 Webhook 签名，使用恒定时间比较
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := SignWebhookPayload(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
