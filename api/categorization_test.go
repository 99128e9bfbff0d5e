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
	"github.com/stretchr/testify/require"
)

func newCategorizationRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if userID != 0 {
		router.Use(setUserIDMiddleware(userID))
	}
	h := NewCategorizationHandler()
	router.POST("/suggest", h.Suggest)
	router.GET("/rules", h.ListRules)
	router.POST("/rules", h.CreateRule)
	router.PUT("/rules/:id", h.UpdateRule)
	router.DELETE("/rules/:id", h.DeleteRule)
	return router
}

func ruleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "pattern", "category", "is_active", "match_count", "created_at", "updated_at", "deleted_at"})
}

func TestCategorizationHandler_Suggest_Match(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	// 按 match_count 降序返回启用规则
	mock.ExpectQuery("SELECT .* FROM `category_rules`").
		WithArgs(uint(1), true).
		WillReturnRows(ruleRows().
			AddRow(2, 1, "super", "餐饮", true, 10, now, now, nil).
			AddRow(1, 1, "market", "购物", true, 5, now, now, nil))

	// 命中后原子自增计数
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `category_rules` SET `match_count`=match_count").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := newCategorizationRouter(1)
	body := `{"description":"SUPERMARKET COMPRAS"}`
	req := httptest.NewRequest("POST", "/suggest", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Code int `json:"code"`
		Data struct {
			Category *string `json:"category"`
			RuleID   *uint   `json:"rule_id"`
			Pattern  *string `json:"pattern"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Category)
	assert.Equal(t, "餐饮", *resp.Data.Category)
	assert.Equal(t, uint(2), *resp.Data.RuleID)
	assert.Equal(t, "super", *resp.Data.Pattern)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorizationHandler_Suggest_NoMatch(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `category_rules`").
		WithArgs(uint(1), true).
		WillReturnRows(ruleRows().
			AddRow(1, 1, "uber", "交通", true, 3, now, now, nil).
			AddRow(2, 1, "netflix", "娱乐", true, 1, now, now, nil))
	// 无命中：没有任何 UPDATE

	router := newCategorizationRouter(1)
	body := `{"description":"padaria do bairro"}`
	req := httptest.NewRequest("POST", "/suggest", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Nil(t, data["category"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorizationHandler_Suggest_EmptyDescription(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 空描述不触发任何数据库操作
	router := newCategorizationRouter(1)
	req := httptest.NewRequest("POST", "/suggest", bytes.NewBufferString(`{"description":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Nil(t, data["category"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorizationHandler_Suggest_MissingBody(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 请求体缺失等同于空描述
	router := newCategorizationRouter(1)
	req := httptest.NewRequest("POST", "/suggest", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorizationHandler_Suggest_Unauthorized(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 未登录直接 401，不触碰数据库
	router := newCategorizationRouter(0)
	req := httptest.NewRequest("POST", "/suggest", bytes.NewBufferString(`{"description":"uber eats"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorizationHandler_Suggest_StoreFailure(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `category_rules`").
		WithArgs(uint(1), true).
		WillReturnError(assert.AnError)

	router := newCategorizationRouter(1)
	req := httptest.NewRequest("POST", "/suggest", bytes.NewBufferString(`{"description":"uber eats"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 500, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorizationHandler_CreateRule(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// pattern 查重：无记录
	mock.ExpectQuery("SELECT .* FROM `category_rules`").
		WithArgs(uint(1), "uber").
		WillReturnRows(ruleRows())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `category_rules`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := newCategorizationRouter(1)
	// 大写 pattern 会被归一化为小写
	body := `{"pattern":"  UBER ","category":"交通"}`
	req := httptest.NewRequest("POST", "/rules", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "uber", data["pattern"])
	assert.Equal(t, true, data["is_active"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorizationHandler_CreateRule_Duplicate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `category_rules`").
		WithArgs(uint(1), "uber").
		WillReturnRows(ruleRows().AddRow(1, 1, "uber", "交通", true, 0, now, now, nil))

	router := newCategorizationRouter(1)
	body := `{"pattern":"uber","category":"交通"}`
	req := httptest.NewRequest("POST", "/rules", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorizationHandler_UpdateRule_Toggle(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `category_rules`").
		WithArgs(uint64(5), uint(1)).
		WillReturnRows(ruleRows().AddRow(5, 1, "uber", "交通", true, 9, now, now, nil))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `category_rules`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := newCategorizationRouter(1)
	body := `{"is_active":false}`
	req := httptest.NewRequest("PUT", "/rules/5", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorizationHandler_UpdateRule_NotOwned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 别人的规则：按 id+user_id 查不到，返回 404，无任何修改
	mock.ExpectQuery("SELECT .* FROM `category_rules`").
		WithArgs(uint64(5), uint(2)).
		WillReturnRows(ruleRows())

	router := newCategorizationRouter(2)
	body := `{"is_active":false}`
	req := httptest.NewRequest("PUT", "/rules/5", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorizationHandler_DeleteRule_NotOwned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `category_rules`").
		WithArgs(uint64(7), uint(2)).
		WillReturnRows(ruleRows())

	router := newCategorizationRouter(2)
	req := httptest.NewRequest("DELETE", "/rules/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorizationHandler_DeleteRule(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `category_rules`").
		WithArgs(uint64(7), uint(1)).
		WillReturnRows(ruleRows().AddRow(7, 1, "netflix", "娱乐", true, 2, now, now, nil))

	// 软删除也是 UPDATE
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `category_rules`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := newCategorizationRouter(1)
	req := httptest.NewRequest("DELETE", "/rules/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
