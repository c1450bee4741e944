package bulksql

import (
	"fmt"
	"sort"
	"time"
)

// ColumnType is a driver-facing bind type hint for a column's values.
type ColumnType int

const (
	// TypeString is the default when no hint is supplied for a column.
	TypeString ColumnType = iota
	// TypeInteger marks integral values.
	TypeInteger
	// TypeBinary marks raw byte values.
	TypeBinary
	// TypeASCII marks single-byte character values.
	TypeASCII
)

// String returns the string representation of ColumnType.
func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeInteger:
		return "INTEGER"
	case TypeBinary:
		return "BINARY"
	case TypeASCII:
		return "ASCII"
	default:
		return "UNKNOWN"
	}
}

// ColumnTypeMap maps column names to bind type hints. Columns absent
// from the map default to TypeString. A nil or empty map means the
// caller supplied no hints at all and none are forwarded to the driver.
type ColumnTypeMap map[string]ColumnType

// Row 一行数据：列名到可绑定值的有序映射。
// 列顺序为首次 Set 的顺序，重复 Set 覆盖值但保留位置。
type Row struct {
	columns []string
	values  map[string]any
}

// NewRow 创建空行
func NewRow() *Row {
	return &Row{values: make(map[string]any)}
}

// RowFromMap 从无序 map 创建行，列按名称排序以保证确定性
func RowFromMap(values map[string]any) *Row {
	columns := make([]string, 0, len(values))
	for col := range values {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	row := NewRow()
	for _, col := range columns {
		row.Set(col, values[col])
	}
	return row
}

// Set 设置列值（链式调用）
func (r *Row) Set(column string, value any) *Row {
	if _, exists := r.values[column]; !exists {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
	return r
}

// SetString 设置字符串列值
func (r *Row) SetString(column string, value string) *Row {
	return r.Set(column, value)
}

// SetInt64 设置整型列值
func (r *Row) SetInt64(column string, value int64) *Row {
	return r.Set(column, value)
}

// SetFloat64 设置浮点列值
func (r *Row) SetFloat64(column string, value float64) *Row {
	return r.Set(column, value)
}

// SetBool 设置布尔列值
func (r *Row) SetBool(column string, value bool) *Row {
	return r.Set(column, value)
}

// SetTime 设置时间列值
func (r *Row) SetTime(column string, value time.Time) *Row {
	return r.Set(column, value)
}

// SetBytes 设置二进制列值
func (r *Row) SetBytes(column string, value []byte) *Row {
	return r.Set(column, value)
}

// SetNull 设置 NULL 列值
func (r *Row) SetNull(column string) *Row {
	return r.Set(column, nil)
}

// Columns 返回列名（按插入顺序）
func (r *Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Value 返回列值
func (r *Row) Value(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Len 返回列数
func (r *Row) Len() int {
	return len(r.columns)
}

// String 字符串表示
func (r *Row) String() string {
	return fmt.Sprintf("Row{columns=%v}", r.columns)
}

// RowBatch 一次批量操作的行序列。空批次是合法的空操作。
type RowBatch []*Row
