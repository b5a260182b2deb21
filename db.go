package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

// Execer 执行写入语句，*sqlx.DB 和 *sqlx.Tx 都满足
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Client 被测数据库客户端
type Client interface {
	Execer

	Rebind(query string) string
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	Close() error
}

// Transactional 支持事务的客户端
//
// 种子数据写入时每个用户及其资料在同一个事务内完成
type Transactional interface {
	WithTx(ctx context.Context, fn func(Execer) error) error
}

// ReplicaSyncer 存在本地副本的客户端
//
// 测量之前需要把远端主库的数据同步到本地副本
type ReplicaSyncer interface {
	Sync(ctx context.Context) error
}

// Pragma sqlite数据库配置
//
// https://www.sqlite.org/pragma.html
type Pragma struct {
	BusyTimeout int
	CacheSize   int
	ForeignKeys bool
	JournalMode string
	Synchronous string
	TempStore   string
}

// encode 按 modernc.org/sqlite 的 _pragma 参数格式编码
func (p Pragma) encode() string {
	val := url.Values{}

	if v := p.JournalMode; v != "" {
		val.Add("_pragma", fmt.Sprintf("journal_mode(%s)", v))
	}
	if v := p.Synchronous; v != "" {
		val.Add("_pragma", fmt.Sprintf("synchronous(%s)", v))
	}
	if v := p.CacheSize; v != 0 {
		val.Add("_pragma", fmt.Sprintf("cache_size(%d)", v))
	}
	if v := p.BusyTimeout; v != 0 {
		val.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", v))
	}
	if v := p.ForeignKeys; v {
		val.Add("_pragma", "foreign_keys(1)")
	}
	if v := p.TempStore; v != "" {
		val.Add("_pragma", fmt.Sprintf("temp_store(%s)", v))
	}

	result, _ := url.QueryUnescape(val.Encode())
	return result
}

// DB 数据库连接
type DB struct {
	*sqlx.DB
}

// NewDB 创建数据库连接
func NewDB(driver, dsn string) (*DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	slog.Debug("connect database", slog.String("dsn", dsn), slog.String("driver", driver))

	return wrapDB(db), nil
}

func wrapDB(db *sqlx.DB) *DB {
	return &DB{DB: db.Unsafe()}
}
