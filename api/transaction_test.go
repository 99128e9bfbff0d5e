package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupTransactionRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewTransactionHandler()
	r.Use(setUserIDMiddleware(userID))
	r.POST("/transactions", handler.Create)
	r.GET("/transactions", handler.List)
	r.GET("/transactions/:id", handler.Get)
	r.PUT("/transactions/:id", handler.Update)
	r.DELETE("/transactions/:id", handler.Delete)
	return r
}

func transactionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "type", "amount", "category", "description",
		"external_id", "transaction_time", "created_at", "updated_at", "deleted_at",
	})
}

func TestTransactionHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	r := setupTransactionRouter(1)

	// 类别校验
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(uint(1), "餐饮").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}).AddRow(3, 1, "餐饮"))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	body, _ := json.Marshal(CreateTransactionRequest{
		Amount:          58.50,
		Category:        "餐饮",
		Description:     "午餐",
		TransactionTime: "2024-03-15 12:30:00",
	})
	req := httptest.NewRequest("POST", "/transactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)

	var resp Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_UnknownCategory(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	r := setupTransactionRouter(1)

	// 类别不存在
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(uint(1), "不存在的类别").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	body, _ := json.Marshal(CreateTransactionRequest{
		Amount:          10,
		Category:        "不存在的类别",
		TransactionTime: "2024-03-15 12:30:00",
	})
	req := httptest.NewRequest("POST", "/transactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestTransactionHandler_Create_BadTime(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	r := setupTransactionRouter(1)

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(uint(1), "餐饮").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}).AddRow(3, 1, "餐饮"))

	body, _ := json.Marshal(CreateTransactionRequest{
		Amount:          10,
		Category:        "餐饮",
		TransactionTime: "2024/03/15",
	})
	req := httptest.NewRequest("POST", "/transactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestTransactionHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	r := setupTransactionRouter(1)

	now := time.Now()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(transactionRows().
			AddRow(2, 1, "expense", 99.90, "购物", "supermarket compras", "", now, now, now, nil).
			AddRow(1, 1, "income", 8000.00, "其他", "工资", "", now, now, now, nil))

	req := httptest.NewRequest("GET", "/transactions?page=1&page_size=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Total int64 `json:"total"`
			List  []struct {
				ID uint `json:"id"`
			} `json:"list"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Data.Total)
	assert.Len(t, resp.Data.List, 2)
}

func TestTransactionHandler_Get_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	r := setupTransactionRouter(1)

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(uint64(99), uint(1)).
		WillReturnRows(transactionRows())

	req := httptest.NewRequest("GET", "/transactions/99", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
}

func TestTransactionHandler_Delete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	r := setupTransactionRouter(1)

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(uint64(7), uint(1)).
		WillReturnRows(transactionRows().
			AddRow(7, 1, "expense", 10.00, "其他", "", "", now, now, now, nil))

	// 软删除
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := httptest.NewRequest("DELETE", "/transactions/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Delete_NotOwned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 用户2访问用户1的记录
	r := setupTransactionRouter(2)

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(uint64(7), uint(2)).
		WillReturnRows(transactionRows())

	req := httptest.NewRequest("DELETE", "/transactions/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
}
