package bulksql

import (
	"strconv"
	"strings"
)

// Family 数据库家族
type Family int

const (
	// FamilyUnknown 无法识别的服务端
	FamilyUnknown Family = iota
	// FamilyMySQL MySQL 服务端
	FamilyMySQL
	// FamilyMariaDB MariaDB 服务端
	FamilyMariaDB
)

// String returns the string representation of Family.
func (f Family) String() string {
	switch f {
	case FamilyMySQL:
		return "MySQL"
	case FamilyMariaDB:
		return "MariaDB"
	default:
		return "Unknown"
	}
}

// UpsertStyle upsert 语法分支
type UpsertStyle int

const (
	// UpsertUnsupported 服务端不支持多行 VALUES + ON DUPLICATE KEY UPDATE
	UpsertUnsupported UpsertStyle = iota
	// UpsertValuesFunc `col = VALUES(col)` 语法（MariaDB 与 8.0.19 之前的 MySQL）
	UpsertValuesFunc
	// UpsertRowAlias `INSERT ... AS alias` + `alias.col` 语法（MySQL >= 8.0.19，VALUES() 已废弃）
	UpsertRowAlias
)

// String returns the string representation of UpsertStyle.
func (s UpsertStyle) String() string {
	switch s {
	case UpsertValuesFunc:
		return "VALUES()"
	case UpsertRowAlias:
		return "ROW-ALIAS"
	default:
		return "UNSUPPORTED"
	}
}

// Dialect 连接期解析一次的方言能力，之后不可变
type Dialect struct {
	Family        Family
	UpsertStyle   UpsertStyle
	ServerVersion string
}

// Supported 报告该方言是否可被引擎使用
func (d Dialect) Supported() bool {
	return d.UpsertStyle != UpsertUnsupported
}

// rowAliasMinVersion MySQL 引入行别名 upsert 语法的版本
var rowAliasMinVersion = [3]int{8, 0, 19}

// ResolveDialect 从服务端版本串解析方言。
// MariaDB 可能带 "5.5.5-" 复制前缀；非 MySQL 家族返回 UpsertUnsupported。
func ResolveDialect(serverVersion string) Dialect {
	dialect := Dialect{ServerVersion: serverVersion}

	version := strings.TrimSpace(serverVersion)
	if version == "" {
		return dialect
	}

	if strings.Contains(strings.ToLower(version), "mariadb") {
		dialect.Family = FamilyMariaDB
		dialect.UpsertStyle = UpsertValuesFunc
		return dialect
	}

	parsed, ok := parseVersionNumber(version)
	if !ok {
		return dialect
	}

	dialect.Family = FamilyMySQL
	if compareVersion(parsed, rowAliasMinVersion) >= 0 {
		dialect.UpsertStyle = UpsertRowAlias
	} else {
		dialect.UpsertStyle = UpsertValuesFunc
	}
	return dialect
}

// parseVersionNumber 解析 "8.0.32"、"5.7.44-log" 开头的版本号
func parseVersionNumber(version string) ([3]int, bool) {
	var out [3]int

	// 截断 "-log"、"-debug" 之类的后缀
	if i := strings.IndexAny(version, "-+~ "); i >= 0 {
		version = version[:i]
	}

	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return out, false
	}
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return out, false
		}
		out[i] = n
	}
	return out, true
}

func compareVersion(a, b [3]int) int {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
