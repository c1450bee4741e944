package bulksql

import "fmt"

// ColumnSignature 校验批次内所有行共享同一列集合，返回规范列序列。
// 规范顺序取第一行的列顺序；后续行只要求集合相等。
// 空批次返回 (nil, nil)，表示空操作。
func ColumnSignature(batch RowBatch) ([]string, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	signature := batch[0].Columns()
	canonical := make(map[string]struct{}, len(signature))
	for _, col := range signature {
		canonical[col] = struct{}{}
	}

	for i, row := range batch[1:] {
		if row.Len() != len(signature) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d",
				ErrColumnMismatch, i+1, row.Len(), len(signature))
		}
		for _, col := range row.Columns() {
			if _, ok := canonical[col]; !ok {
				return nil, fmt.Errorf("%w: row %d has unexpected column %q",
					ErrColumnMismatch, i+1, col)
			}
		}
	}

	return signature, nil
}

// ValidateJoinColumns 校验批量更新的关联列：非空、都在签名内、
// 且至少剩一个非关联列可供 SET。
func ValidateJoinColumns(signature []string, joinColumns []string) error {
	if len(joinColumns) == 0 {
		return ErrMissingJoinColumns
	}

	inSignature := make(map[string]struct{}, len(signature))
	for _, col := range signature {
		inSignature[col] = struct{}{}
	}

	join := make(map[string]struct{}, len(joinColumns))
	for _, col := range joinColumns {
		if _, ok := inSignature[col]; !ok {
			return fmt.Errorf("%w: %q", ErrInvalidJoinColumns, col)
		}
		join[col] = struct{}{}
	}

	for _, col := range signature {
		if _, ok := join[col]; !ok {
			return nil
		}
	}
	return ErrNoUpdatableColumns
}
