package bulksql

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// WriterConfig BufferedWriter 配置
type WriterConfig struct {
	BufferSize    int           // 提交通道容量
	FlushSize     int           // 达到该行数立即刷新
	FlushInterval time.Duration // 定时刷新间隔
}

// DefaultWriterConfig 默认配置
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BufferSize:    1000,
		FlushSize:     200,
		FlushInterval: 100 * time.Millisecond,
	}
}

func (c WriterConfig) withDefaults() WriterConfig {
	d := DefaultWriterConfig()
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	if c.FlushSize <= 0 {
		c.FlushSize = d.FlushSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = d.FlushInterval
	}
	return c
}

// BufferedWriter 面向单表的异步攒批写入器。
// Submit 累积行，达到 FlushSize 或 FlushInterval 后整批走 BulkInsertEngine。
// 核心引擎本身保持同步单次调用的契约，这一层只是可选的便利封装。
type BufferedWriter struct {
	engine  *BulkInsertEngine
	table   string
	types   ColumnTypeMap
	upsert  bool
	config  WriterConfig
	onError func(error)
	logger  zerolog.Logger

	ch        chan *Row
	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
}

// WriterOption BufferedWriter 可选配置
type WriterOption func(*BufferedWriter)

// WithWriterTypes 设置列类型提示
func WithWriterTypes(types ColumnTypeMap) WriterOption {
	return func(w *BufferedWriter) { w.types = types }
}

// WithWriterUpsert 刷新时使用 upsert 语义
func WithWriterUpsert() WriterOption {
	return func(w *BufferedWriter) { w.upsert = true }
}

// WithFlushErrorHandler 设置刷新失败回调，默认只记日志
func WithFlushErrorHandler(handler func(error)) WriterOption {
	return func(w *BufferedWriter) { w.onError = handler }
}

// NewBufferedWriter 创建写入器并启动后台刷新循环。
// ctx 取消后写入器停止接收并刷掉剩余缓冲。
func NewBufferedWriter(ctx context.Context, engine *BulkInsertEngine, table string, config WriterConfig, opts ...WriterOption) *BufferedWriter {
	config = config.withDefaults()
	w := &BufferedWriter{
		engine: engine,
		table:  table,
		config: config,
		logger: engine.logger,
		ch:     make(chan *Row, config.BufferSize),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.loop(ctx)
	return w
}

// Submit 提交一行。写入器已关闭时返回 ErrWriterClosed。
func (w *BufferedWriter) Submit(ctx context.Context, row *Row) error {
	// 先查关闭状态，避免与下面的发送分支在 select 里随机竞争
	select {
	case <-w.closed:
		return ErrWriterClosed
	default:
	}
	select {
	case <-w.closed:
		return ErrWriterClosed
	case <-ctx.Done():
		return ctx.Err()
	case w.ch <- row:
		return nil
	}
}

// Close 停止接收并刷掉剩余缓冲，阻塞到后台循环退出
func (w *BufferedWriter) Close() error {
	w.closeOnce.Do(func() {
		close(w.closed)
	})
	<-w.done
	return nil
}

func (w *BufferedWriter) loop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.FlushInterval)
	defer ticker.Stop()

	pending := make(RowBatch, 0, w.config.FlushSize)

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := pending
		pending = make(RowBatch, 0, w.config.FlushSize)
		w.flushBatch(ctx, batch)
	}

	for {
		select {
		case row := <-w.ch:
			pending = append(pending, row)
			if len(pending) >= w.config.FlushSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.closed:
			w.drain(&pending)
			flush()
			return
		case <-ctx.Done():
			w.drain(&pending)
			flush()
			return
		}
	}
}

// drain 收尾时把通道里已提交的行并入缓冲
func (w *BufferedWriter) drain(pending *RowBatch) {
	for {
		select {
		case row := <-w.ch:
			*pending = append(*pending, row)
		default:
			return
		}
	}
}

func (w *BufferedWriter) flushBatch(ctx context.Context, batch RowBatch) {
	// 收尾刷新可能发生在 ctx 取消之后，不能因此丢数据
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}

	var err error
	if w.upsert {
		_, err = w.engine.Upsert(ctx, w.table, batch, w.types)
	} else {
		_, err = w.engine.Insert(ctx, w.table, batch, w.types)
	}
	if err != nil {
		if w.onError != nil {
			w.onError(err)
			return
		}
		w.logger.Error().Err(err).
			Str("table", w.table).
			Int("batch_size", len(batch)).
			Msg("buffered flush failed")
	}
}
