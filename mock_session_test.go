package bulksql_test

import (
	"context"
	"strings"
	"sync"

	"github.com/rushairer/bulksql"
)

// executedStmt 记录一次 Execute 调用
type executedStmt struct {
	SQL   string
	Args  []any
	Types []bulksql.ColumnType
}

type droppedTable struct {
	Name     string
	IfExists bool
}

// mockSession 记录所有协作者调用的 Session 模拟实现，供各测试共用
type mockSession struct {
	mu sync.Mutex

	version string
	columns map[string][]bulksql.ColumnDef
	indexes map[string][]bulksql.IndexDef

	executed []executedStmt
	created  []*bulksql.StagingTable
	dropped  []droppedTable

	affected       func(sql string) int64
	execErr        func(sql string) error
	createErr      error
	dropErr        error
	listColumnsErr error
	listIndexesErr error
}

func newMockSession() *mockSession {
	return &mockSession{
		version: "8.0.32",
		columns: map[string][]bulksql.ColumnDef{
			"products": {
				{Name: "id", NativeType: "int(11)", Nullable: false, Extra: "auto_increment"},
				{Name: "sku", NativeType: "varchar(64)", Nullable: false},
				{Name: "price", NativeType: "int(11)", Nullable: false},
				{Name: "note", NativeType: "varchar(255)", Nullable: true},
			},
		},
		indexes: map[string][]bulksql.IndexDef{
			"products": {
				{Name: "PRIMARY", Columns: []string{"id"}},
				{Name: "uniq_sku", Columns: []string{"sku"}},
			},
		},
	}
}

func (m *mockSession) Execute(ctx context.Context, query string, args []any, types []bulksql.ColumnType) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.execErr != nil {
		if err := m.execErr(query); err != nil {
			return 0, err
		}
	}
	m.executed = append(m.executed, executedStmt{SQL: query, Args: args, Types: types})
	if m.affected != nil {
		return m.affected(query), nil
	}
	return int64(len(args)), nil
}

func (m *mockSession) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (m *mockSession) ServerVersion(ctx context.Context) (string, error) {
	return m.version, nil
}

func (m *mockSession) ListColumns(ctx context.Context, table string) ([]bulksql.ColumnDef, error) {
	if m.listColumnsErr != nil {
		return nil, m.listColumnsErr
	}
	return m.columns[table], nil
}

func (m *mockSession) ListIndexes(ctx context.Context, table string) ([]bulksql.IndexDef, error) {
	if m.listIndexesErr != nil {
		return nil, m.listIndexesErr
	}
	return m.indexes[table], nil
}

func (m *mockSession) CreateTemporaryTable(ctx context.Context, table *bulksql.StagingTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, table)
	return nil
}

func (m *mockSession) DropTemporaryTable(ctx context.Context, name string, ifExists bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dropErr != nil {
		return m.dropErr
	}
	m.dropped = append(m.dropped, droppedTable{Name: name, IfExists: ifExists})
	return nil
}

// callCount 返回触达数据库的调用总数
func (m *mockSession) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.executed) + len(m.created) + len(m.dropped)
}

func stringsContains(s, sub string) bool { return strings.Contains(s, sub) }
