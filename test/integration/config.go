package main

import (
	"os"
	"strconv"
)

// TestConfig 集成测试配置，统一从环境变量读取（docker-compose 为唯一配置源）
type TestConfig struct {
	MySQLDSN    string
	MariaDBDSN  string // 可选，空则跳过 MariaDB 场景
	PostgresDSN string // 可选，空则跳过平台拒绝场景
	ReportAddr  string // gin 报告/指标服务地址
	BatchSize   int
	Workers     int
}

func parseIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseStringEnv(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadConfig() TestConfig {
	return TestConfig{
		MySQLDSN:    parseStringEnv("MYSQL_DSN", "root:password@tcp(mysql:3306)/testdb?parseTime=true"),
		MariaDBDSN:  parseStringEnv("MARIADB_DSN", ""),
		PostgresDSN: parseStringEnv("POSTGRES_DSN", ""),
		ReportAddr:  parseStringEnv("REPORT_ADDR", ":9090"),
		BatchSize:   parseIntEnv("BATCH_SIZE", 200),
		Workers:     parseIntEnv("CONCURRENT_WORKERS", 4),
	}
}
