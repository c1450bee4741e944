package bulksql

import "context"

// ColumnDef 目标表的一列的实时元数据
type ColumnDef struct {
	Name       string
	NativeType string // 例如 "int(11)"、"varchar(64)"
	Nullable   bool
	Default    *string // nil 表示无默认值
	Extra      string  // 例如 "auto_increment"，不会带入临时表
}

// IndexDef 目标表的一个索引
type IndexDef struct {
	Name    string
	Columns []string
}

// StagingTable 临时过渡表描述符：生成的表名、按列签名过滤后的列、
// 每个关联列一个索引。由 TemporaryTableStager 创建并保证释放。
type StagingTable struct {
	Name    string
	Columns []ColumnDef
	Indexes []IndexDef
}

// ColumnNames 返回过渡表的列名（按签名顺序）
func (st *StagingTable) ColumnNames() []string {
	names := make([]string, len(st.Columns))
	for i, col := range st.Columns {
		names[i] = col.Name
	}
	return names
}

// Session 底层数据库会话的协作者契约。
// 引擎只通过它触达数据库；连接池、事务、重试都属于它背后的客户端。
type Session interface {
	// Execute 执行一条语句并返回驱动报告的受影响行数。
	// types 与 args 一一对应；为 nil 时沿用驱动默认绑定。
	Execute(ctx context.Context, query string, args []any, types []ColumnType) (int64, error)

	// QuoteIdentifier 按方言引用标识符
	QuoteIdentifier(name string) string

	// ServerVersion 返回服务端版本串，用于一次性的方言解析
	ServerVersion(ctx context.Context) (string, error)

	// ListColumns 返回表的列元数据（按表内顺序）
	ListColumns(ctx context.Context, table string) ([]ColumnDef, error)

	// ListIndexes 返回表的索引
	ListIndexes(ctx context.Context, table string) ([]IndexDef, error)

	// CreateTemporaryTable 按描述符创建临时表
	CreateTemporaryTable(ctx context.Context, table *StagingTable) error

	// DropTemporaryTable 删除临时表；ifExists 模式下重复删除不报错
	DropTemporaryTable(ctx context.Context, name string, ifExists bool) error
}
