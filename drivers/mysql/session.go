// Package mysql 提供基于 database/sql 的 bulksql.Session 实现，
// 面向 MySQL 协议的服务端（MySQL / MariaDB）。
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rushairer/bulksql"
)

// DB database/sql 的最小执行面，*sql.Conn、*sql.Tx 都满足。
// 临时表是连接作用域的，调用方必须保证同一个 Session 的所有语句
// 落在同一条连接上：传 *sql.Conn / *sql.Tx，或者用 NewPinnedSession
// 从连接池里固定一条。裸 *sql.DB 会把语句分散到池内不同连接，
// 过渡表在后续语句看来就不存在了。
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session bulksql.Session 的 MySQL 实现。
// 类型提示在这里被忽略：database/sql 驱动自行推断绑定类型。
type Session struct {
	db   DB
	conn *sql.Conn // 仅 NewPinnedSession 持有，Close 时归还连接池
}

var _ bulksql.Session = (*Session)(nil)

// NewSession 基于单条连接（*sql.Conn / *sql.Tx）创建 Session，
// 连接生命周期由调用方管理
func NewSession(db DB) *Session {
	return &Session{db: db}
}

// NewPinnedSession 从连接池固定一条连接并基于它创建 Session。
// 用完必须调用 Close 归还连接。
func NewPinnedSession(ctx context.Context, db *sql.DB) (*Session, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, bulksql.NewDatabaseError("pin connection", err)
	}
	return &Session{db: conn, conn: conn}, nil
}

// Close 归还 NewPinnedSession 固定的连接；其他构造方式下是空操作
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Execute 执行语句并返回受影响行数
func (s *Session) Execute(ctx context.Context, query string, args []any, types []bulksql.ColumnType) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, bulksql.NewDatabaseError("execute", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, bulksql.NewDatabaseError("execute", err)
	}
	return affected, nil
}

// QuoteIdentifier 反引号引用，内嵌反引号翻倍
func (s *Session) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// ServerVersion 返回 SELECT VERSION() 的结果
func (s *Session) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := s.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		return "", bulksql.NewDatabaseError("server version", err)
	}
	return version, nil
}

// ListColumns 从 information_schema 读当前库下表的列元数据
func (s *Session) ListColumns(ctx context.Context, table string) ([]bulksql.ColumnDef, error) {
	const query = `SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, EXTRA
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, bulksql.NewDatabaseError("list columns", err)
	}
	defer rows.Close()

	var columns []bulksql.ColumnDef
	for rows.Next() {
		var (
			col          bulksql.ColumnDef
			nullable     string
			defaultValue sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.NativeType, &nullable, &defaultValue, &col.Extra); err != nil {
			return nil, bulksql.NewDatabaseError("list columns", err)
		}
		col.Nullable = strings.EqualFold(nullable, "YES")
		if defaultValue.Valid {
			v := defaultValue.String
			col.Default = &v
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, bulksql.NewDatabaseError("list columns", err)
	}
	return columns, nil
}

// ListIndexes 从 information_schema 读当前库下表的索引，按序号聚合列
func (s *Session) ListIndexes(ctx context.Context, table string) ([]bulksql.IndexDef, error) {
	const query = `SELECT INDEX_NAME, COLUMN_NAME
FROM information_schema.STATISTICS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
ORDER BY INDEX_NAME, SEQ_IN_INDEX`

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, bulksql.NewDatabaseError("list indexes", err)
	}
	defer rows.Close()

	var (
		indexes []bulksql.IndexDef
		current *bulksql.IndexDef
	)
	for rows.Next() {
		var indexName, columnName string
		if err := rows.Scan(&indexName, &columnName); err != nil {
			return nil, bulksql.NewDatabaseError("list indexes", err)
		}
		if current == nil || current.Name != indexName {
			indexes = append(indexes, bulksql.IndexDef{Name: indexName})
			current = &indexes[len(indexes)-1]
		}
		current.Columns = append(current.Columns, columnName)
	}
	if err := rows.Err(); err != nil {
		return nil, bulksql.NewDatabaseError("list indexes", err)
	}
	return indexes, nil
}

// CreateTemporaryTable 按描述符渲染并执行 CREATE TEMPORARY TABLE
func (s *Session) CreateTemporaryTable(ctx context.Context, table *bulksql.StagingTable) error {
	if _, err := s.db.ExecContext(ctx, s.RenderCreateTemporaryTable(table)); err != nil {
		return bulksql.NewDatabaseError("create temporary table", err)
	}
	return nil
}

// RenderCreateTemporaryTable 渲染过渡表 DDL。
// 只带原生类型与可空性；默认值和 auto_increment 不进过渡表，
// 过渡表的每一列都会被显式填充。
func (s *Session) RenderCreateTemporaryTable(table *bulksql.StagingTable) string {
	defs := make([]string, 0, len(table.Columns)+len(table.Indexes))
	for _, col := range table.Columns {
		null := "NOT NULL"
		if col.Nullable {
			null = "NULL"
		}
		defs = append(defs, fmt.Sprintf("%s %s %s", s.QuoteIdentifier(col.Name), col.NativeType, null))
	}
	for _, index := range table.Indexes {
		quoted := make([]string, len(index.Columns))
		for i, col := range index.Columns {
			quoted[i] = s.QuoteIdentifier(col)
		}
		defs = append(defs, fmt.Sprintf("KEY %s (%s)", s.QuoteIdentifier(index.Name), strings.Join(quoted, ", ")))
	}
	return fmt.Sprintf("CREATE TEMPORARY TABLE %s (%s)", s.QuoteIdentifier(table.Name), strings.Join(defs, ", "))
}

// DropTemporaryTable 删除临时表，ifExists 模式下表不存在不报错
func (s *Session) DropTemporaryTable(ctx context.Context, name string, ifExists bool) error {
	stmt := "DROP TEMPORARY TABLE "
	if ifExists {
		stmt += "IF EXISTS "
	}
	stmt += s.QuoteIdentifier(name)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return bulksql.NewDatabaseError("drop temporary table", err)
	}
	return nil
}
