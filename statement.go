package bulksql

import (
	"fmt"
	"strings"
	"sync"
)

// upsertAlias 行别名 upsert 语法使用的保留别名，引用后不会与表名冲突
const upsertAlias = "new"

// Quoter 标识符引用能力，由 Session 满足
type Quoter interface {
	QuoteIdentifier(name string) string
}

// StatementBuilder 渲染带引用、参数化的批量 SQL 文本，按方言分支。
// 无每次调用的可变状态，可并发共享。
type StatementBuilder struct {
	quoter       Quoter
	dialect      Dialect
	placeholders sync.Map // key: (colCount<<32)|batchSize  value: string
}

// NewStatementBuilder 创建 StatementBuilder
func NewStatementBuilder(quoter Quoter, dialect Dialect) *StatementBuilder {
	return &StatementBuilder{quoter: quoter, dialect: dialect}
}

// BuildInsert 生成多行 INSERT，可选 upsert。
// 参数按“先行后列”展开；updateColumns 为空时 upsert 更新全部签名列。
// 返回的 types 仅在 typeMap 非空时存在，与 args 一一对应，
// 未命中 typeMap 的列回落为 TypeString。
func (b *StatementBuilder) BuildInsert(
	table string,
	columns []string,
	batch RowBatch,
	typeMap ColumnTypeMap,
	upsert bool,
	updateColumns []string,
) (string, []any, []ColumnType, error) {
	if len(batch) == 0 || len(columns) == 0 {
		return "", nil, nil, nil
	}

	quoted := b.quoteAll(columns)
	placeholders := b.generatePlaceholders(len(columns), len(batch))

	args := make([]any, 0, len(batch)*len(columns))
	var types []ColumnType
	if len(typeMap) > 0 {
		types = make([]ColumnType, 0, len(batch)*len(columns))
	}
	for _, row := range batch {
		for _, col := range columns {
			value, _ := row.Value(col)
			args = append(args, value)
			if types != nil {
				types = append(types, typeMap[col]) // 零值即 TypeString
			}
		}
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		b.quoter.QuoteIdentifier(table), strings.Join(quoted, ", "), placeholders)

	if !upsert {
		return sql, args, types, nil
	}

	updateCols := updateColumns
	if len(updateCols) == 0 {
		updateCols = columns
	}

	switch b.dialect.UpsertStyle {
	case UpsertValuesFunc:
		pairs := make([]string, len(updateCols))
		for i, col := range updateCols {
			q := b.quoter.QuoteIdentifier(col)
			pairs[i] = fmt.Sprintf("%s = VALUES(%s)", q, q)
		}
		sql = fmt.Sprintf("%s ON DUPLICATE KEY UPDATE %s", sql, strings.Join(pairs, ", "))
		return sql, args, types, nil
	case UpsertRowAlias:
		alias := b.quoter.QuoteIdentifier(upsertAlias)
		pairs := make([]string, len(updateCols))
		for i, col := range updateCols {
			q := b.quoter.QuoteIdentifier(col)
			pairs[i] = fmt.Sprintf("%s = %s.%s", q, alias, q)
		}
		sql = fmt.Sprintf("%s AS %s ON DUPLICATE KEY UPDATE %s", sql, alias, strings.Join(pairs, ", "))
		return sql, args, types, nil
	default:
		return "", nil, nil, ErrUnsupportedPlatform
	}
}

// BuildJoinedUpdate 生成过渡表关联更新：
// UPDATE target AS t1 INNER JOIN staging AS t2 ON (...) SET t1.c = t2.c, ...
// SET 列为签名减去关联列，保持签名顺序。
func (b *StatementBuilder) BuildJoinedUpdate(target, staging string, columns, joinColumns []string) string {
	t1 := b.quoter.QuoteIdentifier("t1")
	t2 := b.quoter.QuoteIdentifier("t2")

	join := make(map[string]struct{}, len(joinColumns))
	conditions := make([]string, len(joinColumns))
	for i, col := range joinColumns {
		join[col] = struct{}{}
		q := b.quoter.QuoteIdentifier(col)
		conditions[i] = fmt.Sprintf("%s.%s = %s.%s", t1, q, t2, q)
	}

	assignments := make([]string, 0, len(columns)-len(joinColumns))
	for _, col := range columns {
		if _, ok := join[col]; ok {
			continue
		}
		q := b.quoter.QuoteIdentifier(col)
		assignments = append(assignments, fmt.Sprintf("%s.%s = %s.%s", t1, q, t2, q))
	}

	return fmt.Sprintf("UPDATE %s AS %s INNER JOIN %s AS %s ON (%s) SET %s",
		b.quoter.QuoteIdentifier(target), t1,
		b.quoter.QuoteIdentifier(staging), t2,
		strings.Join(conditions, " AND "),
		strings.Join(assignments, ", "))
}

func (b *StatementBuilder) quoteAll(names []string) []string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = b.quoter.QuoteIdentifier(name)
	}
	return quoted
}

func (b *StatementBuilder) generatePlaceholders(columnCount, batchSize int) string {
	if columnCount <= 0 || batchSize <= 0 {
		return ""
	}
	key := (uint64(columnCount) << 32) | uint64(batchSize)
	if v, ok := b.placeholders.Load(key); ok {
		return v.(string)
	}
	singleRow := "(" + strings.Repeat("?, ", columnCount-1) + "?)"
	rows := make([]string, batchSize)
	for i := range rows {
		rows[i] = singleRow
	}
	out := strings.Join(rows, ", ")
	b.placeholders.Store(key, out)
	return out
}
