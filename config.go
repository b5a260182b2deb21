package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/exp/slog"
)

const (
	// 种子用户数
	seedSize = 1000
	// 测量的查询次数
	queryCount = 250
	// 同步副本之后的等待时间
	settleDelay = 1000 * time.Millisecond
)

// Backend 被测数据库类型
type Backend string

const (
	BackendLibSQL   Backend = "libsql"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// Config 一次运行的全部配置，启动时读取一次
type Config struct {
	Backend Backend

	SyncURL     string
	AuthToken   string
	ReplicaPath string

	PostgresURL string

	SQLitePath string

	KeepTables bool
	LogLevel   slog.Level

	SeedSize    int
	QueryCount  int
	SettleDelay time.Duration
}

// ConfigMissingError 缺少必需的环境变量
type ConfigMissingError struct {
	Vars []string
}

func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("missing environment variables: %s", strings.Join(e.Vars, ", "))
}

// 配置项和环境变量的对应关系
var envKeys = map[string]string{
	"sync_url":     "LIBSQL_DATABASE_URL",
	"auth_token":   "LIBSQL_AUTH_TOKEN",
	"replica_path": "LIBSQL_REPLICA_PATH",
	"postgres_url": "POSTGRES_DATABASE_URL",
	"sqlite_path":  "SQLITE_DATABASE_PATH",
	"keep_tables":  "BENCH_KEEP_TABLES",
	"log_level":    "BENCH_LOG_LEVEL",
}

// 各数据库必需的配置项，按提示顺序排列
var requiredKeys = map[Backend][]string{
	BackendLibSQL:   {"sync_url", "auth_token"},
	BackendPostgres: {"postgres_url"},
	BackendSQLite:   nil,
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, env := range envKeys {
		// BindEnv 只在没有传入 key 时报错
		_ = v.BindEnv(key, env)
	}

	v.SetDefault("replica_path", "libsql.db")
	v.SetDefault("sqlite_path", "sqlite.db")
	v.SetDefault("keep_tables", false)
	v.SetDefault("log_level", "info")
	return v
}

// loadConfig 从环境变量读取配置
//
// 缺少必需的变量时返回 *ConfigMissingError，列出全部缺失的变量名
func loadConfig(backend Backend) (Config, error) {
	required, ok := requiredKeys[backend]
	if !ok {
		return Config{}, fmt.Errorf("unknown backend %q", backend)
	}

	v := newViper()

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, envKeys[key])
		}
	}
	if len(missing) > 0 {
		return Config{}, &ConfigMissingError{Vars: missing}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return Config{}, fmt.Errorf("parse %s, %w", envKeys["log_level"], err)
	}

	return Config{
		Backend:     backend,
		SyncURL:     v.GetString("sync_url"),
		AuthToken:   v.GetString("auth_token"),
		ReplicaPath: v.GetString("replica_path"),
		PostgresURL: v.GetString("postgres_url"),
		SQLitePath:  v.GetString("sqlite_path"),
		KeepTables:  v.GetBool("keep_tables"),
		LogLevel:    level,
		SeedSize:    seedSize,
		QueryCount:  queryCount,
		SettleDelay: settleDelay,
	}, nil
}
