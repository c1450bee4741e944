package bulksql

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// BulkUpdateEngine 批量更新引擎：
// 校验 → 建过渡表 → 批量填充 → INNER JOIN 更新 → 保证删除过渡表。
// 单条关联更新只需一个往返，由服务端优化 JOIN，大批次下远快于逐行 UPDATE。
// 同一会话上交错发起的并发调用不安全；不同会话天然隔离（过渡表名含随机后缀）。
type BulkUpdateEngine struct {
	session  Session
	dialect  Dialect
	builder  *StatementBuilder
	stager   *TemporaryTableStager
	reporter MetricsReporter
	logger   zerolog.Logger
}

// NewBulkUpdateEngine 创建批量更新引擎。
// 与插入引擎相同，非 MySQL/MariaDB 家族在构造期即失败。
func NewBulkUpdateEngine(ctx context.Context, session Session) (*BulkUpdateEngine, error) {
	dialect, err := resolveSessionDialect(ctx, session)
	if err != nil {
		return nil, err
	}
	builder := NewStatementBuilder(session, dialect)
	return &BulkUpdateEngine{
		session:  session,
		dialect:  dialect,
		builder:  builder,
		stager:   NewTemporaryTableStager(session, builder),
		reporter: NoopMetricsReporter{},
		logger:   zerolog.Nop(),
	}, nil
}

// WithMetricsReporter 设置监控报告器（链式调用）
func (e *BulkUpdateEngine) WithMetricsReporter(reporter MetricsReporter) *BulkUpdateEngine {
	if reporter != nil {
		e.reporter = reporter
	}
	return e
}

// WithLogger 设置日志（链式调用）
func (e *BulkUpdateEngine) WithLogger(logger zerolog.Logger) *BulkUpdateEngine {
	e.logger = logger
	return e
}

// WithSuffixSource 注入过渡表名后缀来源（链式调用，测试用）
func (e *BulkUpdateEngine) WithSuffixSource(source func() string) *BulkUpdateEngine {
	e.stager.WithSuffixSource(source)
	return e
}

// Dialect 返回构造时解析的方言
func (e *BulkUpdateEngine) Dialect() Dialect {
	return e.dialect
}

// Update 按关联列批量更新。空批次返回 0 且不触达数据库；
// 所有前置校验失败都发生在任何 SQL 之前。
// 批次内关联键重复时的胜者由服务端 JOIN 语义决定，不做归一。
func (e *BulkUpdateEngine) Update(ctx context.Context, table string, batch RowBatch, joinColumns []string, types ColumnTypeMap) (affected int64, err error) {
	columns, err := ColumnSignature(batch)
	if err != nil {
		return 0, err
	}
	if columns == nil {
		return 0, nil
	}
	if err := ValidateJoinColumns(columns, joinColumns); err != nil {
		return 0, err
	}

	startTime := time.Now()
	defer func() {
		e.reporter.ReportBulkExecution(ctx, BulkMetrics{
			Operation:    "update",
			Table:        table,
			BatchSize:    len(batch),
			AffectedRows: affected,
			Duration:     time.Since(startTime),
			Error:        err,
			StartTime:    startTime,
		})
	}()

	e.adviseJoinIndexes(ctx, table, joinColumns)

	staging, err := e.stager.Stage(ctx, table, columns, joinColumns)
	if err != nil {
		return 0, err
	}
	defer func() {
		// 所有退出路径都要删过渡表，否则长连接会话会泄漏临时表。
		// 删除自身失败时单独记录，不能掩盖原始的更新错误。
		if releaseErr := e.stager.Release(ctx, staging); releaseErr != nil {
			e.logger.Error().Err(releaseErr).
				Str("staging_table", staging.Name).
				Msg("failed to release staging table")
			if err == nil {
				err = fmt.Errorf("release staging table %s: %w", staging.Name, releaseErr)
			}
		}
	}()

	if _, err = e.stager.Populate(ctx, staging, batch, types); err != nil {
		return 0, err
	}

	sql := e.builder.BuildJoinedUpdate(table, staging.Name, columns, joinColumns)
	affected, err = e.session.Execute(ctx, sql, nil, nil)
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// adviseJoinIndexes 目标表上没有索引覆盖关联列首列时告警。
// 纯建议性质，元数据读取失败不影响更新本身。
func (e *BulkUpdateEngine) adviseJoinIndexes(ctx context.Context, table string, joinColumns []string) {
	indexes, err := e.session.ListIndexes(ctx, table)
	if err != nil {
		e.logger.Debug().Err(err).Str("table", table).Msg("skip join index advisory")
		return
	}

	covered := make(map[string]struct{})
	for _, index := range indexes {
		if len(index.Columns) > 0 {
			covered[index.Columns[0]] = struct{}{}
		}
	}

	for _, col := range joinColumns {
		if _, ok := covered[col]; !ok {
			e.logger.Warn().
				Str("table", table).
				Str("join_column", col).
				Msg("join column is not a leading column of any index, joined update may be slow")
		}
	}
}
