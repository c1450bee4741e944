package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rushairer/bulksql"
	bulkmysql "github.com/rushairer/bulksql/drivers/mysql"
)

const targetTable = "bulksql_it_products"

// scenarioEnv 单个数据库目标上的场景执行环境
type scenarioEnv struct {
	database     string
	db           *sql.DB
	session      *bulkmysql.Session
	insertEngine *bulksql.BulkInsertEngine
	updateEngine *bulksql.BulkUpdateEngine
	config       TestConfig
}

func (e *scenarioEnv) run(ctx context.Context, name string, fn func(context.Context) error) scenarioResult {
	start := time.Now()
	result := scenarioResult{Database: e.database, Scenario: name}
	if err := fn(ctx); err != nil {
		result.Error = err.Error()
	} else {
		result.Passed = true
	}
	result.Duration = time.Since(start).String()
	return result
}

func (e *scenarioEnv) setupSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf("DROP TABLE IF EXISTS `%s`", targetTable),
		fmt.Sprintf(`CREATE TABLE `+"`%s`"+` (
			id INT NOT NULL AUTO_INCREMENT,
			sku VARCHAR(64) NOT NULL,
			price INT NOT NULL,
			note VARCHAR(255) NULL,
			PRIMARY KEY (id),
			UNIQUE KEY uniq_sku (sku)
		)`, targetTable),
	}
	for _, stmt := range statements {
		if _, err := e.session.Execute(ctx, stmt, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

func (e *scenarioEnv) teardownSchema(ctx context.Context) error {
	_, err := e.session.Execute(ctx, fmt.Sprintf("DROP TABLE IF EXISTS `%s`", targetTable), nil, nil)
	return err
}

func (e *scenarioEnv) batch(priceOffset int64) bulksql.RowBatch {
	batch := make(bulksql.RowBatch, e.config.BatchSize)
	for i := range batch {
		batch[i] = bulksql.NewRow().
			SetString("sku", fmt.Sprintf("SKU-%04d", i)).
			SetInt64("price", int64(i)+priceOffset).
			SetString("note", "integration")
	}
	return batch
}

func (e *scenarioEnv) bulkInsert(ctx context.Context) error {
	affected, err := e.insertEngine.Insert(ctx, targetTable, e.batch(0), nil)
	if err != nil {
		return err
	}
	if affected != int64(e.config.BatchSize) {
		return fmt.Errorf("affected = %d, want %d", affected, e.config.BatchSize)
	}
	return nil
}

// upsertIdempotence 同键 upsert 两次：第二次改值后受影响行数应符合
// 驱动的原始惯例（MySQL 家族每更新一行计 2），不做归一
func (e *scenarioEnv) upsertIdempotence(ctx context.Context) error {
	if _, err := e.insertEngine.Upsert(ctx, targetTable, e.batch(0), nil, "price", "note"); err != nil {
		return err
	}
	affected, err := e.insertEngine.Upsert(ctx, targetTable, e.batch(1000), nil, "price", "note")
	if err != nil {
		return err
	}
	if affected != int64(2*e.config.BatchSize) {
		return fmt.Errorf("second upsert affected = %d, want %d (all rows updated, none inserted)", affected, 2*e.config.BatchSize)
	}
	return nil
}

func (e *scenarioEnv) bulkUpdateRoundTrip(ctx context.Context) error {
	batch := make(bulksql.RowBatch, e.config.BatchSize)
	for i := range batch {
		batch[i] = bulksql.NewRow().
			SetString("sku", fmt.Sprintf("SKU-%04d", i)).
			SetInt64("price", int64(9000+i)).
			SetString("note", "updated")
	}

	if _, err := e.updateEngine.Update(ctx, targetTable, batch, []string{"sku"}, nil); err != nil {
		return err
	}

	// 回读校验：关联键之外的列等于最后一次过渡的值
	var price int64
	var note string
	row := e.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT price, note FROM `%s` WHERE sku = ?", targetTable), "SKU-0000")
	if err := row.Scan(&price, &note); err != nil {
		return err
	}
	if price != 9000 || note != "updated" {
		return fmt.Errorf("round trip mismatch: price=%d note=%q", price, note)
	}

	// 泄漏检查：过渡表必须已删除
	var leaked int
	if err := e.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME LIKE ?",
		"temp_"+targetTable+"%").Scan(&leaked); err != nil {
		return err
	}
	if leaked != 0 {
		return fmt.Errorf("%d staging tables leaked", leaked)
	}
	return nil
}

// concurrentBulkUpdate 独立会话上的并发批量更新：
// 每个 worker 固定自己的连接并构造自己的引擎，
// 过渡表生命周期互不干扰，表名不相撞，全部成功
func (e *scenarioEnv) concurrentBulkUpdate(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make(chan error, e.config.Workers)

	for w := 0; w < e.config.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			session, err := bulkmysql.NewPinnedSession(ctx, e.db)
			if err != nil {
				errs <- fmt.Errorf("worker %d: %w", worker, err)
				return
			}
			defer session.Close()

			engine, err := bulksql.NewBulkUpdateEngine(ctx, session)
			if err != nil {
				errs <- fmt.Errorf("worker %d: %w", worker, err)
				return
			}

			batch := make(bulksql.RowBatch, 50)
			for i := range batch {
				batch[i] = bulksql.NewRow().
					SetString("sku", fmt.Sprintf("SKU-%04d", i)).
					SetInt64("price", int64(worker*100+i)).
					SetString("note", fmt.Sprintf("worker-%d", worker))
			}
			if _, err := engine.Update(ctx, targetTable, batch, []string{"sku"}, nil); err != nil {
				errs <- fmt.Errorf("worker %d: %w", worker, err)
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		return err
	}
	return nil
}

// runPostgresRejection 非 MySQL 家族必须在构造期被拒绝
func runPostgresRejection(ctx context.Context, dsn string) scenarioResult {
	start := time.Now()
	result := scenarioResult{Database: "postgresql", Scenario: "platform_rejection"}
	defer func() { result.Duration = time.Since(start).String() }()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer db.Close()

	session, err := bulkmysql.NewPinnedSession(ctx, db)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer session.Close()

	_, err = bulksql.NewBulkInsertEngine(ctx, session)
	if !errors.Is(err, bulksql.ErrUnsupportedPlatform) {
		result.Error = fmt.Sprintf("want ErrUnsupportedPlatform, got %v", err)
		return result
	}
	result.Passed = true
	return result
}
