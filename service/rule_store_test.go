package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockStore(t *testing.T) (*GormRuleStore, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewGormRuleStore(gormDB), mock, func() { sqlDB.Close() }
}

func TestGormRuleStore_ListActiveRules(t *testing.T) {
	store, mock, cleanup := setupMockStore(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `category_rules`").
		WithArgs(uint(1), true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "pattern", "category", "is_active", "match_count", "created_at", "updated_at", "deleted_at"}).
			AddRow(2, 1, "super", "餐饮", true, 10, now, now, nil).
			AddRow(1, 1, "market", "购物", true, 5, now, now, nil))

	rules, err := store.ListActiveRules(1)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "super", rules[0].Pattern)
	assert.Equal(t, uint(10), rules[0].MatchCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRuleStore_IncrementMatchCount(t *testing.T) {
	store, mock, cleanup := setupMockStore(t)
	defer cleanup()

	// 必须是单条原子自增 UPDATE，而不是先查再写
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `category_rules` SET `match_count`=match_count").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.IncrementMatchCount(3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRuleStore_IncrementMatchCount_NotFound(t *testing.T) {
	store, mock, cleanup := setupMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `category_rules` SET `match_count`=match_count").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := store.IncrementMatchCount(999)
	assert.ErrorIs(t, err, ErrRuleNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
