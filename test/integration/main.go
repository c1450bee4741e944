// 集成测试入口：对真实 MySQL/MariaDB 跑批量插入 / upsert / 关联更新场景，
// 对 PostgreSQL 验证平台拒绝，结果通过 gin 报告服务暴露。
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/rushairer/bulksql"
	bulkmysql "github.com/rushairer/bulksql/drivers/mysql"
	"github.com/rushairer/bulksql/monitoring"
)

func main() {
	config := loadConfig()
	metrics := monitoring.NewPrometheusMetrics()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	collector := &resultCollector{}
	server := startReportServer(config.ReportAddr, metrics, collector)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	ctx := context.Background()

	runTarget(ctx, "mysql", config.MySQLDSN, config, metrics, logger, collector)
	if config.MariaDBDSN != "" {
		runTarget(ctx, "mariadb", config.MariaDBDSN, config, metrics, logger, collector)
	}
	if config.PostgresDSN != "" {
		collector.add(runPostgresRejection(ctx, config.PostgresDSN))
	}

	collector.printSummary()
	if collector.failed() > 0 {
		os.Exit(1)
	}
}

// runTarget 对单个 MySQL 家族目标执行全部场景
func runTarget(ctx context.Context, name, dsn string, config TestConfig, metrics *monitoring.PrometheusMetrics, logger zerolog.Logger, collector *resultCollector) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		collector.add(scenarioResult{Database: name, Scenario: "connect", Error: err.Error()})
		return
	}
	defer db.Close()
	db.SetMaxOpenConns(config.Workers + 2)

	if err := db.PingContext(ctx); err != nil {
		collector.add(scenarioResult{Database: name, Scenario: "connect", Error: err.Error()})
		return
	}

	// 临时表是连接作用域的，场景全程固定一条连接
	session, err := bulkmysql.NewPinnedSession(ctx, db)
	if err != nil {
		collector.add(scenarioResult{Database: name, Scenario: "connect", Error: err.Error()})
		return
	}
	defer session.Close()

	insertEngine, err := bulksql.NewBulkInsertEngine(ctx, session)
	if err != nil {
		collector.add(scenarioResult{Database: name, Scenario: "construct", Error: err.Error()})
		return
	}
	insertEngine.WithMetricsReporter(metrics).WithLogger(logger)

	updateEngine, err := bulksql.NewBulkUpdateEngine(ctx, session)
	if err != nil {
		collector.add(scenarioResult{Database: name, Scenario: "construct", Error: err.Error()})
		return
	}
	updateEngine.WithMetricsReporter(metrics).WithLogger(logger)

	log.Printf("📋 %s 方言: %s / %s", name, insertEngine.Dialect().Family, insertEngine.Dialect().UpsertStyle)

	env := &scenarioEnv{
		database:     name,
		db:           db,
		session:      session,
		insertEngine: insertEngine,
		updateEngine: updateEngine,
		config:       config,
	}

	collector.add(env.run(ctx, "setup_schema", env.setupSchema))
	collector.add(env.run(ctx, "bulk_insert", env.bulkInsert))
	collector.add(env.run(ctx, "upsert_idempotence", env.upsertIdempotence))
	collector.add(env.run(ctx, "bulk_update_round_trip", env.bulkUpdateRoundTrip))
	collector.add(env.run(ctx, "concurrent_bulk_update", env.concurrentBulkUpdate))
	collector.add(env.run(ctx, "teardown_schema", env.teardownSchema))
}
