package bulksql

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnMismatch 批次内行的列签名不一致
	ErrColumnMismatch = errors.New("row column signature mismatch")

	// ErrMissingJoinColumns 批量更新未指定关联列
	ErrMissingJoinColumns = errors.New("missing join columns")

	// ErrInvalidJoinColumns 关联列不在列签名中
	ErrInvalidJoinColumns = errors.New("join column not in column signature")

	// ErrNoUpdatableColumns 关联列覆盖了全部列，没有可更新的列
	ErrNoUpdatableColumns = errors.New("no updatable columns outside join columns")

	// ErrUnsupportedPlatform 连接的数据库不属于 MySQL/MariaDB 家族
	ErrUnsupportedPlatform = errors.New("unsupported database platform")

	// ErrWriterClosed 向已关闭的 BufferedWriter 提交
	ErrWriterClosed = errors.New("buffered writer closed")
)

// DatabaseError 包装驱动层返回的错误，保留原始错误与语句类别
type DatabaseError struct {
	Op  string // execute / create temporary table / drop temporary table / list columns / list indexes / server version
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("bulksql: %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// NewDatabaseError 包装驱动错误；err 为 nil 时返回 nil
func NewDatabaseError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DatabaseError{Op: op, Err: err}
}
