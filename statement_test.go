package bulksql_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rushairer/bulksql"
)

func testBatch() bulksql.RowBatch {
	return bulksql.RowBatch{
		bulksql.NewRow().SetString("sku", "A").SetInt64("price", 10),
		bulksql.NewRow().SetString("sku", "B").SetInt64("price", 20),
	}
}

func newTestBuilder(style bulksql.UpsertStyle) *bulksql.StatementBuilder {
	dialect := bulksql.Dialect{Family: bulksql.FamilyMySQL, UpsertStyle: style}
	return bulksql.NewStatementBuilder(newMockSession(), dialect)
}

func TestBuildInsert_PlainInsert(t *testing.T) {
	builder := newTestBuilder(bulksql.UpsertRowAlias)

	sql, args, types, err := builder.BuildInsert("products", []string{"sku", "price"}, testBatch(), nil, false, nil)
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO `products` (`sku`, `price`) VALUES (?, ?), (?, ?)", sql)
	// 参数先行后列
	require.Equal(t, []any{"A", int64(10), "B", int64(20)}, args)
	// 未提供任何类型提示时不传类型数组，保留驱动默认
	require.Nil(t, types)
}

func TestBuildInsert_TypeHints(t *testing.T) {
	builder := newTestBuilder(bulksql.UpsertRowAlias)
	typeMap := bulksql.ColumnTypeMap{"price": bulksql.TypeInteger}

	_, _, types, err := builder.BuildInsert("products", []string{"sku", "price"}, testBatch(), typeMap, false, nil)
	require.NoError(t, err)
	// 未命中 typeMap 的列回落为 TypeString
	require.Equal(t, []bulksql.ColumnType{
		bulksql.TypeString, bulksql.TypeInteger,
		bulksql.TypeString, bulksql.TypeInteger,
	}, types)
}

func TestBuildInsert_UpsertValuesFunc(t *testing.T) {
	builder := newTestBuilder(bulksql.UpsertValuesFunc)

	sql, _, _, err := builder.BuildInsert("products", []string{"sku", "price"}, testBatch(), nil, true, nil)
	require.NoError(t, err)
	require.Equal(t,
		"INSERT INTO `products` (`sku`, `price`) VALUES (?, ?), (?, ?)"+
			" ON DUPLICATE KEY UPDATE `sku` = VALUES(`sku`), `price` = VALUES(`price`)",
		sql)
}

func TestBuildInsert_UpsertRowAlias(t *testing.T) {
	builder := newTestBuilder(bulksql.UpsertRowAlias)

	sql, _, _, err := builder.BuildInsert("products", []string{"sku", "price"}, testBatch(), nil, true, nil)
	require.NoError(t, err)
	require.Equal(t,
		"INSERT INTO `products` (`sku`, `price`) VALUES (?, ?), (?, ?)"+
			" AS `new` ON DUPLICATE KEY UPDATE `sku` = `new`.`sku`, `price` = `new`.`price`",
		sql)
}

func TestBuildInsert_UpsertExplicitUpdateColumns(t *testing.T) {
	builder := newTestBuilder(bulksql.UpsertValuesFunc)

	sql, _, _, err := builder.BuildInsert("products", []string{"sku", "price"}, testBatch(), nil, true, []string{"price"})
	require.NoError(t, err)
	require.Contains(t, sql, "ON DUPLICATE KEY UPDATE `price` = VALUES(`price`)")
	require.NotContains(t, sql, "`sku` = VALUES")
}

func TestBuildInsert_UpsertUnsupportedDialect(t *testing.T) {
	builder := newTestBuilder(bulksql.UpsertUnsupported)

	_, _, _, err := builder.BuildInsert("products", []string{"sku"}, testBatch()[:1], nil, true, nil)
	require.ErrorIs(t, err, bulksql.ErrUnsupportedPlatform)
}

func TestBuildInsert_EmptyInputs(t *testing.T) {
	builder := newTestBuilder(bulksql.UpsertRowAlias)

	sql, args, types, err := builder.BuildInsert("products", nil, testBatch(), nil, false, nil)
	require.NoError(t, err)
	require.Empty(t, sql)
	require.Nil(t, args)
	require.Nil(t, types)

	sql, _, _, err = builder.BuildInsert("products", []string{"sku"}, nil, nil, false, nil)
	require.NoError(t, err)
	require.Empty(t, sql)
}

func TestBuildJoinedUpdate(t *testing.T) {
	builder := newTestBuilder(bulksql.UpsertRowAlias)

	sql := builder.BuildJoinedUpdate("products", "temp_products_abc", []string{"sku", "price", "note"}, []string{"sku"})
	require.Equal(t,
		"UPDATE `products` AS `t1` INNER JOIN `temp_products_abc` AS `t2`"+
			" ON (`t1`.`sku` = `t2`.`sku`)"+
			" SET `t1`.`price` = `t2`.`price`, `t1`.`note` = `t2`.`note`",
		sql)
}

func TestBuildJoinedUpdate_MultipleJoinColumns(t *testing.T) {
	builder := newTestBuilder(bulksql.UpsertValuesFunc)

	sql := builder.BuildJoinedUpdate("products", "temp_products_abc", []string{"sku", "region", "price"}, []string{"sku", "region"})
	require.Contains(t, sql, "ON (`t1`.`sku` = `t2`.`sku` AND `t1`.`region` = `t2`.`region`)")
	require.Contains(t, sql, "SET `t1`.`price` = `t2`.`price`")
}

func BenchmarkBuildInsert(b *testing.B) {
	builder := newTestBuilder(bulksql.UpsertValuesFunc)
	batch := make(bulksql.RowBatch, 200)
	for i := range batch {
		batch[i] = bulksql.NewRow().SetString("sku", "A").SetInt64("price", int64(i)).SetNull("note")
	}
	columns := []string{"sku", "price", "note"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _, err := builder.BuildInsert("products", columns, batch, nil, true, nil)
		if err != nil {
			b.Fatal(err)
		}
	}
}
