package service

import (
	"errors"
	"fmt"

	"finbook/models"

	"gorm.io/gorm"
)

// ErrRuleNotFound 规则不存在（或不属于当前用户）
var ErrRuleNotFound = errors.New("规则不存在")

// GormRuleStore 基于 gorm 的规则存储实现
type GormRuleStore struct {
	db *gorm.DB
}

// NewGormRuleStore 创建规则存储
func NewGormRuleStore(db *gorm.DB) *GormRuleStore {
	return &GormRuleStore{db: db}
}

// ListActiveRules 加载指定用户的全部启用规则
// 按 match_count 降序排列，次数相同时按 id 升序保证顺序稳定
func (s *GormRuleStore) ListActiveRules(userID uint) ([]models.CategoryRule, error) {
	var rules []models.CategoryRule
	if err := s.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("match_count DESC, id ASC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("查询规则失败: %w", err)
	}
	return rules, nil
}

// IncrementMatchCount 将规则的匹配次数原子加一
// 通过数据库的自增表达式完成，并发调用不会丢失计数
func (s *GormRuleStore) IncrementMatchCount(ruleID uint) error {
	result := s.db.Model(&models.CategoryRule{}).
		Where("id = ?", ruleID).
		UpdateColumn("match_count", gorm.Expr("match_count + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("更新匹配次数失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}
