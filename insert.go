package bulksql

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// BulkInsertEngine 批量插入引擎：校验 + SQL 生成 + 执行，可选 upsert 语义。
// 构造时解析一次方言并缓存；除此之外不持有每次调用的可变状态，可并发共享。
type BulkInsertEngine struct {
	session  Session
	dialect  Dialect
	builder  *StatementBuilder
	reporter MetricsReporter
	logger   zerolog.Logger
}

// NewBulkInsertEngine 创建批量插入引擎。
// 非 MySQL/MariaDB 家族在这里立即失败（ErrUnsupportedPlatform），不留到调用期。
func NewBulkInsertEngine(ctx context.Context, session Session) (*BulkInsertEngine, error) {
	dialect, err := resolveSessionDialect(ctx, session)
	if err != nil {
		return nil, err
	}
	return &BulkInsertEngine{
		session:  session,
		dialect:  dialect,
		builder:  NewStatementBuilder(session, dialect),
		reporter: NoopMetricsReporter{},
		logger:   zerolog.Nop(),
	}, nil
}

// resolveSessionDialect 解析并校验会话方言，供两个引擎共用
func resolveSessionDialect(ctx context.Context, session Session) (Dialect, error) {
	version, err := session.ServerVersion(ctx)
	if err != nil {
		return Dialect{}, fmt.Errorf("%w: resolve server version: %v", ErrUnsupportedPlatform, err)
	}
	dialect := ResolveDialect(version)
	if !dialect.Supported() {
		return Dialect{}, fmt.Errorf("%w: server version %q", ErrUnsupportedPlatform, version)
	}
	return dialect, nil
}

// WithMetricsReporter 设置监控报告器（链式调用）
func (e *BulkInsertEngine) WithMetricsReporter(reporter MetricsReporter) *BulkInsertEngine {
	if reporter != nil {
		e.reporter = reporter
	}
	return e
}

// WithLogger 设置日志（链式调用）
func (e *BulkInsertEngine) WithLogger(logger zerolog.Logger) *BulkInsertEngine {
	e.logger = logger
	return e
}

// Dialect 返回构造时解析的方言
func (e *BulkInsertEngine) Dialect() Dialect {
	return e.dialect
}

// Insert 批量插入。空批次返回 0 且不触达数据库。
// 调用方负责拆分超出服务端占位符/报文上限的超大批次。
func (e *BulkInsertEngine) Insert(ctx context.Context, table string, batch RowBatch, types ColumnTypeMap) (int64, error) {
	return e.execute(ctx, "insert", table, batch, types, false, nil)
}

// Upsert 批量插入，冲突时更新。updateColumns 为空时更新全部签名列
// （插入路径不理解关联语义，关联类的列也会进 SET）。
// 受影响行数为驱动原始值：MySQL 惯例下插入计 1、更新计 2。
func (e *BulkInsertEngine) Upsert(ctx context.Context, table string, batch RowBatch, types ColumnTypeMap, updateColumns ...string) (int64, error) {
	return e.execute(ctx, "upsert", table, batch, types, true, updateColumns)
}

func (e *BulkInsertEngine) execute(
	ctx context.Context,
	operation string,
	table string,
	batch RowBatch,
	types ColumnTypeMap,
	upsert bool,
	updateColumns []string,
) (affected int64, err error) {
	columns, err := ColumnSignature(batch)
	if err != nil {
		return 0, err
	}
	if columns == nil {
		return 0, nil
	}

	startTime := time.Now()
	defer func() {
		e.reporter.ReportBulkExecution(ctx, BulkMetrics{
			Operation:    operation,
			Table:        table,
			BatchSize:    len(batch),
			AffectedRows: affected,
			Duration:     time.Since(startTime),
			Error:        err,
			StartTime:    startTime,
		})
	}()

	sql, args, argTypes, err := e.builder.BuildInsert(table, columns, batch, types, upsert, updateColumns)
	if err != nil {
		return 0, err
	}

	affected, err = e.session.Execute(ctx, sql, args, argTypes)
	if err != nil {
		return 0, err
	}
	return affected, nil
}
