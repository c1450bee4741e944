package bulksql_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rushairer/bulksql"
)

// 两个独立会话上的并发批量更新不能在过渡表名上相撞
func TestConcurrentUpdates_DistinctStagingNames(t *testing.T) {
	const workers = 8

	names := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session := newMockSession()
			engine, err := bulksql.NewBulkUpdateEngine(context.Background(), session)
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := engine.Update(context.Background(), "products", updateBatch(), []string{"sku"}, nil); err != nil {
				t.Error(err)
				return
			}
			names <- session.created[0].Name
		}()
	}
	wg.Wait()
	close(names)

	seen := make(map[string]struct{})
	for name := range names {
		_, dup := seen[name]
		require.False(t, dup, "staging name collision: %s", name)
		seen[name] = struct{}{}
	}
	require.Len(t, seen, workers)
}

// 共享引擎本身无每次调用的可变状态，可跨 goroutine 复用
func TestSharedInsertEngine_ConcurrentCalls(t *testing.T) {
	session := newMockSession()
	engine, err := bulksql.NewBulkInsertEngine(context.Background(), session)
	require.NoError(t, err)

	const calls = 16
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.Insert(context.Background(), "products", testBatch(), nil); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	require.Len(t, session.executed, calls)
}
