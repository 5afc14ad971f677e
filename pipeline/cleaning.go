// Package pipeline 提供数据清洗：在标注与训练之前剔除缺失关键字段的记录
package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"exohab/catalog"
)

// CleaningRule 清洗规则，返回错误表示该记录被剔除
type CleaningRule interface {
	Apply(record catalog.Record) error
	Name() string
}

// QualityIssue 质量问题
type QualityIssue struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Record    string    `json:"record"`
	Timestamp time.Time `json:"timestamp"`
}

// CleaningStats 清洗统计
type CleaningStats struct {
	TotalProcessed int64            `json:"total_processed"`
	Passed         int64            `json:"passed"`
	Rejected       int64            `json:"rejected"`
	Issues         map[string]int64 `json:"issues"`
	LastClean      time.Time        `json:"last_clean"`
}

// DataCleaner 数据清洗器
type DataCleaner struct {
	rules []CleaningRule

	stats     CleaningStats
	statsLock sync.RWMutex
}

// NewDataCleaner 创建不带规则的清洗器
func NewDataCleaner(rules ...CleaningRule) *DataCleaner {
	return &DataCleaner{
		rules: rules,
		stats: CleaningStats{
			Issues: make(map[string]int64),
		},
	}
}

// NewFeatureCleaner keeps only rows that carry all four modeling columns.
func NewFeatureCleaner() *DataCleaner {
	return NewDataCleaner(NewRequireColumnsRule("require_features",
		catalog.ColRadius, catalog.ColEqTemp, catalog.ColInsolation, catalog.ColStellarTemp))
}

// NewDisplayCleaner keeps rows that can be shown on the index page.
func NewDisplayCleaner() *DataCleaner {
	return NewDataCleaner(
		RequireNameRule{},
		NewRequireColumnsRule("require_display", catalog.ColRadius, catalog.ColEqTemp, catalog.ColDistance),
	)
}

// AddRule 添加清洗规则
func (dc *DataCleaner) AddRule(rule CleaningRule) {
	dc.rules = append(dc.rules, rule)
}

// Clean 清洗数据. Rejected rows are reported, never treated as a failure.
func (dc *DataCleaner) Clean(records []catalog.Record) ([]catalog.Record, []QualityIssue) {
	cleaned := make([]catalog.Record, 0, len(records))
	var issues []QualityIssue

	dc.statsLock.Lock()
	defer dc.statsLock.Unlock()

	now := time.Now()
	for _, record := range records {
		dc.stats.TotalProcessed++

		var recordIssues []QualityIssue
		for _, rule := range dc.rules {
			if err := rule.Apply(record); err != nil {
				recordIssues = append(recordIssues, QualityIssue{
					Type:      rule.Name(),
					Message:   err.Error(),
					Record:    record.Name,
					Timestamp: now,
				})
				dc.stats.Issues[rule.Name()]++
			}
		}

		if len(recordIssues) > 0 {
			dc.stats.Rejected++
			issues = append(issues, recordIssues...)
			continue
		}
		dc.stats.Passed++
		cleaned = append(cleaned, record)
	}

	dc.stats.LastClean = now
	return cleaned, issues
}

// GetStats 获取统计信息
func (dc *DataCleaner) GetStats() CleaningStats {
	dc.statsLock.RLock()
	defer dc.statsLock.RUnlock()

	stats := dc.stats
	stats.Issues = make(map[string]int64, len(dc.stats.Issues))
	for k, v := range dc.stats.Issues {
		stats.Issues[k] = v
	}
	return stats
}

// DisplaySubset returns the first limit displayable rows. limit <= 0 means no limit.
func DisplaySubset(records []catalog.Record, limit int) []catalog.Record {
	display, _ := NewDisplayCleaner().Clean(records)
	if limit > 0 && len(display) > limit {
		display = display[:limit]
	}
	return display
}

// ============ 清洗规则实现 ============

// RequireColumnsRule 必填列规则
type RequireColumnsRule struct {
	name    string
	columns []string
}

func NewRequireColumnsRule(name string, columns ...string) *RequireColumnsRule {
	return &RequireColumnsRule{name: name, columns: columns}
}

func (r *RequireColumnsRule) Name() string {
	return r.name
}

func (r *RequireColumnsRule) Apply(record catalog.Record) error {
	var missing []string
	for _, column := range r.columns {
		if record.Value(column) == nil {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// RequireNameRule 名称不能为空
type RequireNameRule struct{}

func (RequireNameRule) Name() string {
	return "require_name"
}

func (RequireNameRule) Apply(record catalog.Record) error {
	if strings.TrimSpace(record.Name) == "" {
		return fmt.Errorf("missing %s", catalog.ColName)
	}
	return nil
}
