package bulksql

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// stagingSuffixLen 过渡表名后缀长度（UUID 十六进制截断）
const stagingSuffixLen = 16

// defaultSuffixSource 随机 UUID 后缀，碰撞概率可忽略，
// 使不同会话上的并发批量更新互不干扰
func defaultSuffixSource() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return hex[:stagingSuffixLen]
}

// TemporaryTableStager 临时过渡表生命周期管理：
// 从目标表实时元数据推导过渡表结构、创建、填充、保证删除。
type TemporaryTableStager struct {
	session   Session
	builder   *StatementBuilder
	newSuffix func() string
}

// NewTemporaryTableStager 创建 TemporaryTableStager
func NewTemporaryTableStager(session Session, builder *StatementBuilder) *TemporaryTableStager {
	return &TemporaryTableStager{
		session:   session,
		builder:   builder,
		newSuffix: defaultSuffixSource,
	}
}

// WithSuffixSource 注入表名后缀来源（链式调用，测试用）
func (s *TemporaryTableStager) WithSuffixSource(source func() string) *TemporaryTableStager {
	if source != nil {
		s.newSuffix = source
	}
	return s
}

// Stage 读取目标表列元数据，按签名过滤出过渡表结构并创建。
// 沿用目标表的原生类型和可空性，保证后续 JOIN/SET 的类型兼容；
// 默认值与 auto_increment 不带入，过渡表的每一列都会被显式填充。
// 每个关联列建一个索引，关联更新的性能依赖它。
func (s *TemporaryTableStager) Stage(ctx context.Context, table string, columns []string, joinColumns []string) (*StagingTable, error) {
	live, err := s.session.ListColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]ColumnDef, len(live))
	for _, col := range live {
		byName[col.Name] = col
	}

	staged := make([]ColumnDef, 0, len(columns))
	for _, name := range columns {
		def, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("bulksql: stage %s: column %q not found in target table", table, name)
		}
		def.Extra = ""
		def.Default = nil
		staged = append(staged, def)
	}

	indexes := make([]IndexDef, len(joinColumns))
	for i, col := range joinColumns {
		indexes[i] = IndexDef{Name: "idx_" + col, Columns: []string{col}}
	}

	staging := &StagingTable{
		Name:    fmt.Sprintf("temp_%s_%s", table, s.newSuffix()),
		Columns: staged,
		Indexes: indexes,
	}

	if err := s.session.CreateTemporaryTable(ctx, staging); err != nil {
		return nil, err
	}
	return staging, nil
}

// Populate 走批量插入路径填充过渡表（无 upsert）
func (s *TemporaryTableStager) Populate(ctx context.Context, staging *StagingTable, batch RowBatch, types ColumnTypeMap) (int64, error) {
	sql, args, argTypes, err := s.builder.BuildInsert(staging.Name, staging.ColumnNames(), batch, types, false, nil)
	if err != nil {
		return 0, err
	}
	return s.session.Execute(ctx, sql, args, argTypes)
}

// Release 删除过渡表。IF EXISTS 模式，重复或防御性清理不会自身报错。
func (s *TemporaryTableStager) Release(ctx context.Context, staging *StagingTable) error {
	return s.session.DropTemporaryTable(ctx, staging.Name, true)
}
