// Package monitoring 提供 bulksql 的 Prometheus 指标报告器。
package monitoring

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushairer/bulksql"
)

// PrometheusMetrics Prometheus 指标收集器，实现 bulksql.MetricsReporter 接口
type PrometheusMetrics struct {
	executionDuration *prometheus.HistogramVec
	executionTotal    *prometheus.CounterVec
	batchSize         *prometheus.HistogramVec
	rowsAffected      *prometheus.CounterVec
	errorTotal        *prometheus.CounterVec

	registry *prometheus.Registry
	server   *http.Server
}

var _ bulksql.MetricsReporter = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics 创建指标收集器（独立 registry）
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	pm := &PrometheusMetrics{
		executionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bulksql_execution_duration_seconds",
				Help:    "Duration of bulk executions in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
			},
			[]string{"operation", "table", "status"},
		),
		executionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulksql_execution_total",
				Help: "Total number of bulk executions",
			},
			[]string{"operation", "table", "status"},
		),
		batchSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bulksql_batch_size",
				Help:    "Size of batches processed",
				Buckets: prometheus.ExponentialBuckets(1, 2, 15), // 1 to ~32k
			},
			[]string{"operation", "table"},
		),
		rowsAffected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulksql_rows_affected_total",
				Help: "Total driver-reported affected rows",
			},
			[]string{"operation", "table"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulksql_error_total",
				Help: "Total number of failed bulk executions",
			},
			[]string{"operation", "table"},
		),
		registry: registry,
	}

	registry.MustRegister(
		pm.executionDuration,
		pm.executionTotal,
		pm.batchSize,
		pm.rowsAffected,
		pm.errorTotal,
	)
	return pm
}

// ReportBulkExecution 记录一次批量操作
func (pm *PrometheusMetrics) ReportBulkExecution(ctx context.Context, metrics bulksql.BulkMetrics) {
	status := "success"
	if metrics.Error != nil {
		status = "error"
		pm.errorTotal.WithLabelValues(metrics.Operation, metrics.Table).Inc()
	}

	pm.executionDuration.WithLabelValues(metrics.Operation, metrics.Table, status).
		Observe(metrics.Duration.Seconds())
	pm.executionTotal.WithLabelValues(metrics.Operation, metrics.Table, status).Inc()
	pm.batchSize.WithLabelValues(metrics.Operation, metrics.Table).
		Observe(float64(metrics.BatchSize))
	pm.rowsAffected.WithLabelValues(metrics.Operation, metrics.Table).
		Add(float64(metrics.AffectedRows))
}

// Registry 返回内部 registry，供外部挂载
func (pm *PrometheusMetrics) Registry() *prometheus.Registry {
	return pm.registry
}

// Handler 返回 /metrics 的 http.Handler
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}

// StartServer 启动独立的指标HTTP服务
func (pm *PrometheusMetrics) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", pm.Handler())
	pm.server = &http.Server{Addr: addr, Handler: mux}
	go func() {
		_ = pm.server.ListenAndServe()
	}()
}

// StopServer 停止指标HTTP服务
func (pm *PrometheusMetrics) StopServer(ctx context.Context) error {
	if pm.server == nil {
		return nil
	}
	return pm.server.Shutdown(ctx)
}
