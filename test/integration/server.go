package main

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/rushairer/bulksql/monitoring"
)

// scenarioResult 单个场景的执行结果
type scenarioResult struct {
	Database string `json:"database"`
	Scenario string `json:"scenario"`
	Passed   bool   `json:"passed"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

type resultCollector struct {
	mu      sync.Mutex
	results []scenarioResult
}

func (c *resultCollector) add(result scenarioResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)

	status := "✅"
	if !result.Passed {
		status = "❌"
	}
	log.Printf("%s [%s] %s (%s) %s", status, result.Database, result.Scenario, result.Duration, result.Error)
}

func (c *resultCollector) snapshot() []scenarioResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]scenarioResult, len(c.results))
	copy(out, c.results)
	return out
}

func (c *resultCollector) failed() int {
	count := 0
	for _, result := range c.snapshot() {
		if !result.Passed {
			count++
		}
	}
	return count
}

func (c *resultCollector) printSummary() {
	results := c.snapshot()
	failed := c.failed()
	log.Printf("📊 场景总数 %d，失败 %d", len(results), failed)
}

// startReportServer 启动 gin 报告服务：/metrics 暴露 Prometheus 指标，
// /report 返回场景结果 JSON
func startReportServer(addr string, metrics *monitoring.PrometheusMetrics, collector *resultCollector) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/report", func(c *gin.Context) {
		results := collector.snapshot()
		c.JSON(http.StatusOK, gin.H{
			"total":   len(results),
			"failed":  collector.failed(),
			"results": results,
		})
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	server := &http.Server{Addr: addr, Handler: router}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("report server: %v", err)
		}
	}()
	return server
}
