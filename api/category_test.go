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

func setupCategoryRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewCategoryHandler()
	r.Use(setUserIDMiddleware(userID))
	r.GET("/categories", handler.List)
	r.POST("/categories", handler.Create)
	r.PUT("/categories/:id", handler.Update)
	r.DELETE("/categories/:id", handler.Delete)
	return r
}

func categoryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "sort", "color", "created_at", "updated_at", "deleted_at"})
}

func TestCategoryHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	r := setupCategoryRouter(1)

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(uint(1)).
		WillReturnRows(categoryRows().
			AddRow(1, 1, "餐饮", 1, "#ef4444", now, now, nil).
			AddRow(2, 1, "交通", 2, "#3b82f6", now, now, nil))

	req := httptest.NewRequest("GET", "/categories", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)

	var resp struct {
		Code int `json:"code"`
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, "餐饮", resp.Data[0].Name)
}

func TestCategoryHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	r := setupCategoryRouter(1)

	// 重名检查
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WithArgs(uint(1), "宠物").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	body, _ := json.Marshal(CreateCategoryRequest{Name: "宠物", Sort: 9})
	req := httptest.NewRequest("POST", "/categories", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)

	// 未填颜色时使用默认色
	var resp struct {
		Data struct {
			Color string `json:"color"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "#64748b", resp.Data.Color)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_Duplicate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	r := setupCategoryRouter(1)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `categories`").
		WithArgs(uint(1), "餐饮").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	body, _ := json.Marshal(CreateCategoryRequest{Name: "餐饮"})
	req := httptest.NewRequest("POST", "/categories", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestCategoryHandler_Update_NotOwned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 用户2访问用户1的类别
	r := setupCategoryRouter(2)

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(uint64(3), uint(2)).
		WillReturnRows(categoryRows())

	body, _ := json.Marshal(UpdateCategoryRequest{Name: "改名"})
	req := httptest.NewRequest("PUT", "/categories/3", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
}

func TestCategoryHandler_Delete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	r := setupCategoryRouter(1)

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(uint64(3), uint(1)).
		WillReturnRows(categoryRows().AddRow(3, 1, "娱乐", 4, "#a855f7", now, now, nil))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := httptest.NewRequest("DELETE", "/categories/3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
