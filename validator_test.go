package bulksql_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rushairer/bulksql"
)

func TestColumnSignature_EmptyBatch(t *testing.T) {
	signature, err := bulksql.ColumnSignature(nil)
	require.NoError(t, err)
	require.Nil(t, signature)

	signature, err = bulksql.ColumnSignature(bulksql.RowBatch{})
	require.NoError(t, err)
	require.Nil(t, signature)
}

func TestColumnSignature_FirstRowOrderWins(t *testing.T) {
	batch := bulksql.RowBatch{
		bulksql.NewRow().SetString("sku", "A").SetInt64("price", 10).SetNull("note"),
		// 后续行顺序不同，只要求集合相等
		bulksql.NewRow().SetNull("note").SetInt64("price", 20).SetString("sku", "B"),
	}

	signature, err := bulksql.ColumnSignature(batch)
	require.NoError(t, err)
	require.Equal(t, []string{"sku", "price", "note"}, signature)
}

func TestColumnSignature_Mismatch(t *testing.T) {
	tests := []struct {
		name  string
		batch bulksql.RowBatch
	}{
		{
			"missing_column",
			bulksql.RowBatch{
				bulksql.NewRow().SetString("sku", "A").SetInt64("price", 10),
				bulksql.NewRow().SetString("sku", "B"),
			},
		},
		{
			"extra_column",
			bulksql.RowBatch{
				bulksql.NewRow().SetString("sku", "A"),
				bulksql.NewRow().SetString("sku", "B").SetInt64("price", 10),
			},
		},
		{
			"renamed_column",
			bulksql.RowBatch{
				bulksql.NewRow().SetString("sku", "A").SetInt64("price", 10),
				bulksql.NewRow().SetString("sku", "B").SetInt64("cost", 10),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bulksql.ColumnSignature(tt.batch)
			require.ErrorIs(t, err, bulksql.ErrColumnMismatch)
		})
	}
}

func TestValidateJoinColumns(t *testing.T) {
	signature := []string{"sku", "price", "note"}

	tests := []struct {
		name    string
		join    []string
		wantErr error
	}{
		{"single_join", []string{"sku"}, nil},
		{"multi_join", []string{"sku", "note"}, nil},
		{"empty_join", nil, bulksql.ErrMissingJoinColumns},
		{"unknown_join", []string{"id"}, bulksql.ErrInvalidJoinColumns},
		{"join_covers_all", []string{"sku", "price", "note"}, bulksql.ErrNoUpdatableColumns},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bulksql.ValidateJoinColumns(signature, tt.join)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRowFromMap_Deterministic(t *testing.T) {
	row := bulksql.RowFromMap(map[string]any{"price": 10, "sku": "A", "note": nil})
	require.Equal(t, []string{"note", "price", "sku"}, row.Columns())
}
