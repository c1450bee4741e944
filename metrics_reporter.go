package bulksql

import (
	"context"
	"time"
)

// BulkMetrics 一次批量操作的指标
type BulkMetrics struct {
	Operation    string        // insert / upsert / update
	Table        string        // 目标表名
	BatchSize    int           // 批次行数
	AffectedRows int64         // 驱动报告的受影响行数
	Duration     time.Duration // 执行时长
	Error        error         // 错误信息（如果有）
	StartTime    time.Time     // 开始时间
}

// MetricsReporter 性能监控报告器接口
type MetricsReporter interface {
	ReportBulkExecution(ctx context.Context, metrics BulkMetrics)
}

// NoopMetricsReporter 空实现，未配置监控时的默认报告器
type NoopMetricsReporter struct{}

// ReportBulkExecution noop
func (NoopMetricsReporter) ReportBulkExecution(ctx context.Context, metrics BulkMetrics) {}
