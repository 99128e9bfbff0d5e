package service

import (
	"fmt"
	"strings"

	"finbook/models"
)

// Suggestion 分类建议结果
// category 为 null 表示没有命中任何规则；rule_id/pattern 仅在命中时返回
type Suggestion struct {
	Category *string `json:"category"`
	RuleID   *uint   `json:"rule_id,omitempty"`
	Pattern  *string `json:"pattern,omitempty"`
}

// RuleStore 规则存储抽象
// ListActiveRules 必须按 match_count 降序返回（次数相同时按 id 升序，保证稳定）；
// IncrementMatchCount 必须是存储层的原子自增（match_count = match_count + 1），
// 不能实现为先读后写，否则并发下会丢失计数。
type RuleStore interface {
	ListActiveRules(userID uint) ([]models.CategoryRule, error)
	IncrementMatchCount(ruleID uint) error
}

// Categorizer 分类建议引擎
// 每次调用都是无状态的"读-条件写"：读一次规则列表，至多写一次计数。
type Categorizer struct {
	store RuleStore
}

// NewCategorizer 创建分类建议引擎
func NewCategorizer(store RuleStore) *Categorizer {
	return &Categorizer{store: store}
}

// Suggest 根据交易描述给出分类建议
// 匹配语义：取该用户的启用规则，按 match_count 降序扫描，
// 第一条 pattern 是描述（转小写后）子串的规则胜出，其计数原子加一。
// 描述为空时直接返回无建议，不访问存储；扫描完无命中同样返回无建议，且不产生写入。
// 命中后计数更新失败则整个调用失败，调用方不应把建议视为已生效。
func (s *Categorizer) Suggest(userID uint, description string) (*Suggestion, error) {
	// 快速路径：空描述不算错误，也不触发任何存储操作
	if description == "" {
		return &Suggestion{}, nil
	}

	rules, err := s.store.ListActiveRules(userID)
	if err != nil {
		return nil, fmt.Errorf("加载分类规则失败: %w", err)
	}

	// 描述只转一次小写；pattern 已在写入时归一化为小写
	desc := strings.ToLower(description)

	for i := range rules {
		rule := &rules[i]
		if rule.Pattern == "" || !strings.Contains(desc, rule.Pattern) {
			continue
		}
		// 只有被选中的规则计数，且每次调用至多一条
		if err := s.store.IncrementMatchCount(rule.ID); err != nil {
			return nil, fmt.Errorf("更新规则匹配次数失败: %w", err)
		}
		return &Suggestion{
			Category: &rule.Category,
			RuleID:   &rule.ID,
			Pattern:  &rule.Pattern,
		}, nil
	}

	return &Suggestion{}, nil
}

// NormalizePattern 规则 pattern 写入前的归一化
// 统一转小写并去除首尾空白，保证与转小写后的描述做大小写无关匹配
func NormalizePattern(pattern string) string {
	return strings.ToLower(strings.TrimSpace(pattern))
}
