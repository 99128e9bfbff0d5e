package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finbook/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenFinanceClient(baseURL string) *OpenFinanceClient {
	return NewOpenFinanceClient(&config.OpenFinanceConfig{
		Enabled:      true,
		BaseURL:      baseURL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})
}

func TestOpenFinanceClient_Authenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/auth", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "client-id", body["clientId"])
		assert.Equal(t, "client-secret", body["clientSecret"])

		json.NewEncoder(w).Encode(map[string]string{"apiKey": "key-123"})
	}))
	defer srv.Close()

	c := newTestOpenFinanceClient(srv.URL)
	apiKey, err := c.Authenticate()
	require.NoError(t, err)
	assert.Equal(t, "key-123", apiKey)
}

func TestOpenFinanceClient_Authenticate_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
	}))
	defer srv.Close()

	c := newTestOpenFinanceClient(srv.URL)
	_, err := c.Authenticate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestOpenFinanceClient_CreateConnectToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/connect_token", r.URL.Path)
		require.Equal(t, "key-123", r.Header.Get("X-API-KEY"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "item-1", body["itemId"])

		json.NewEncoder(w).Encode(map[string]string{"accessToken": "connect-token-abc"})
	}))
	defer srv.Close()

	c := newTestOpenFinanceClient(srv.URL)
	token, err := c.CreateConnectToken("key-123", "item-1")
	require.NoError(t, err)
	assert.Equal(t, "connect-token-abc", token)
}

func TestOpenFinanceClient_ListAccounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts", r.URL.Path)
		assert.Equal(t, "item-1", r.URL.Query().Get("itemId"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"total": 1,
			"results": []map[string]interface{}{
				{"id": "acc-1", "itemId": "item-1", "name": "Conta Corrente", "type": "BANK", "balance": 1234.56},
			},
		})
	}))
	defer srv.Close()

	c := newTestOpenFinanceClient(srv.URL)
	accounts, err := c.ListAccounts("key-123", "item-1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "acc-1", accounts[0].ID)
	assert.Equal(t, 1234.56, accounts[0].Balance)
}

func TestOpenFinanceClient_ListTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "acc-1", r.URL.Query().Get("accountId"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("from"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"total": 2,
			"results": []map[string]interface{}{
				{"id": "tx-1", "accountId": "acc-1", "description": "UBER EATS SP", "amount": -42.5, "date": "2024-01-10T00:00:00Z"},
				{"id": "tx-2", "accountId": "acc-1", "description": "SUPERMERCADO", "amount": -180.0, "date": "2024-01-12T00:00:00Z"},
			},
		})
	}))
	defer srv.Close()

	c := newTestOpenFinanceClient(srv.URL)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	txs, err := c.ListTransactions("key-123", "acc-1", from, to)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "UBER EATS SP", txs[0].Description)
	assert.Equal(t, -42.5, txs[0].Amount)
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "webhook-secret"
	body := []byte(`{"event":"item/updated","itemId":"item-1"}`)

	sig := SignWebhookPayload(secret, body)
	assert.True(t, VerifyWebhookSignature(secret, body, sig))

	// 签名不匹配
	assert.False(t, VerifyWebhookSignature(secret, body, "deadbeef"))
	// 密钥不同
	assert.False(t, VerifyWebhookSignature("other-secret", body, sig))
	// 内容被篡改
	assert.False(t, VerifyWebhookSignature(secret, []byte(`{"event":"item/updated","itemId":"item-2"}`), sig))
	// 空签名/空密钥直接拒绝
	assert.False(t, VerifyWebhookSignature(secret, body, ""))
	assert.False(t, VerifyWebhookSignature("", body, sig))
}
