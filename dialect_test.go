package bulksql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rushairer/bulksql"
)

func TestResolveDialect(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		family     bulksql.Family
		style      bulksql.UpsertStyle
	}{
		{"mysql_8_row_alias", "8.0.32", bulksql.FamilyMySQL, bulksql.UpsertRowAlias},
		{"mysql_8_boundary", "8.0.19", bulksql.FamilyMySQL, bulksql.UpsertRowAlias},
		{"mysql_8_pre_alias", "8.0.18", bulksql.FamilyMySQL, bulksql.UpsertValuesFunc},
		{"mysql_9", "9.1.0", bulksql.FamilyMySQL, bulksql.UpsertRowAlias},
		{"mysql_57_suffix", "5.7.44-log", bulksql.FamilyMySQL, bulksql.UpsertValuesFunc},
		{"mariadb_plain", "10.4.28-MariaDB", bulksql.FamilyMariaDB, bulksql.UpsertValuesFunc},
		{"mariadb_replication_prefix", "5.5.5-10.6.12-MariaDB-1:10.6.12+maria~ubu2004", bulksql.FamilyMariaDB, bulksql.UpsertValuesFunc},
		{"postgres", "PostgreSQL 16.2 on x86_64-pc-linux-gnu", bulksql.FamilyUnknown, bulksql.UpsertUnsupported},
		{"empty", "", bulksql.FamilyUnknown, bulksql.UpsertUnsupported},
		{"garbage", "something", bulksql.FamilyUnknown, bulksql.UpsertUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialect := bulksql.ResolveDialect(tt.version)
			require.Equal(t, tt.family, dialect.Family)
			require.Equal(t, tt.style, dialect.UpsertStyle)
			require.Equal(t, tt.version, dialect.ServerVersion)
			require.Equal(t, tt.style != bulksql.UpsertUnsupported, dialect.Supported())
		})
	}
}

func TestNewEngines_UnsupportedPlatform(t *testing.T) {
	session := newMockSession()
	session.version = "PostgreSQL 16.2 on x86_64-pc-linux-gnu"

	_, err := bulksql.NewBulkInsertEngine(context.Background(), session)
	require.ErrorIs(t, err, bulksql.ErrUnsupportedPlatform)

	_, err = bulksql.NewBulkUpdateEngine(context.Background(), session)
	require.ErrorIs(t, err, bulksql.ErrUnsupportedPlatform)

	// 构造期失败，不留到调用期
	require.Zero(t, session.callCount())
}

func TestNewEngines_DialectCachedOnce(t *testing.T) {
	session := newMockSession()
	session.version = "10.6.12-MariaDB"

	engine, err := bulksql.NewBulkInsertEngine(context.Background(), session)
	require.NoError(t, err)

	// 构造后改版本不影响已缓存的方言
	session.version = "8.0.32"
	require.Equal(t, bulksql.FamilyMariaDB, engine.Dialect().Family)
	require.Equal(t, bulksql.UpsertValuesFunc, engine.Dialect().UpsertStyle)
}
