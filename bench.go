package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/slog"
)

var ddl = []struct {
	Table string
	SQL   string
}{
	{
		Table: "user",
		SQL: `CREATE TABLE "user" (
			id TEXT PRIMARY KEY,
			username TEXT
		)`,
	},
	{
		Table: "user_profile",
		SQL: `CREATE TABLE "user_profile" (
			id TEXT PRIMARY KEY,
			user_id TEXT REFERENCES "user"(id),
			first_name TEXT,
			last_name TEXT
		)`,
	},
}

const (
	insertUserSQL    = `INSERT INTO "user" (id, username) VALUES (?, ?)`
	insertProfileSQL = `INSERT INTO "user_profile" (id, user_id, first_name, last_name) VALUES (?, ?, ?, ?)`

	joinSQL = `SELECT u.username, p.first_name FROM "user" u JOIN "user_profile" AS p ON u.id = p.user_id`
)

// Result 测量结果
type Result struct {
	Queries int
	Elapsed time.Duration
}

// Micros 总耗时，微秒
func (r Result) Micros() float64 {
	return float64(r.Elapsed.Nanoseconds()) / 1000
}

// PerQueryMicros 平均每次查询耗时，微秒
func (r Result) PerQueryMicros() float64 {
	return r.Micros() / float64(r.Queries)
}

func (r Result) String() string {
	return fmt.Sprintf("took %s, %s per query", formatDuration(r.Micros()), formatDuration(r.PerQueryMicros()))
}

// run 建表、写入种子数据、同步副本、测量并输出结果
//
// 已经建好的表无论成败都会删除（KeepTables 除外），db 在返回前关闭
func run(ctx context.Context, cfg Config, db Client, out io.Writer) (err error) {
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close database, %w", closeErr))
		}
	}()

	fmt.Fprintln(out, "About to create the tables ...")
	created, err := createTables(ctx, db)
	if !cfg.KeepTables && created > 0 {
		defer func() {
			// 原 ctx 可能已经取消，删表使用独立的 context
			if dropErr := dropTables(context.WithoutCancel(ctx), db, created); dropErr != nil {
				err = errors.Join(err, dropErr)
			}
		}()
	}
	if err != nil {
		return err
	}

	users, err := newSeed(cfg.SeedSize)
	if err != nil {
		return fmt.Errorf("generate seed, %w", err)
	}

	fmt.Fprintln(out, "About to seed the database ...")
	if err := seedDatabase(ctx, db, users); err != nil {
		return err
	}

	if syncer, ok := db.(ReplicaSyncer); ok {
		fmt.Fprintln(out, "About to sync to local replica.")
		if err := syncReplica(ctx, syncer, cfg.SettleDelay); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "About to measure the performance with %d queries ...\n", cfg.QueryCount)
	result, err := measure(ctx, db, cfg.QueryCount, time.Now)
	if err != nil {
		return err
	}

	report(out, result)
	return nil
}

// createTables 按顺序建表，返回已经建好的表数量
func createTables(ctx context.Context, db Execer) (int, error) {
	for i, v := range ddl {
		if _, err := db.ExecContext(ctx, v.SQL); err != nil {
			return i, fmt.Errorf("create table %s, %w", v.Table, err)
		}
	}
	return len(ddl), nil
}

// dropTables 按外键依赖的逆序删除前 n 张表
func dropTables(ctx context.Context, db Execer, n int) error {
	for i := n - 1; i >= 0; i-- {
		if _, err := db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, ddl[i].Table)); err != nil {
			return fmt.Errorf("drop table %s, %w", ddl[i].Table, err)
		}
	}
	return nil
}

func insertUser(ctx context.Context, db Execer, rebind func(string) string, u *user) error {
	if _, err := db.ExecContext(ctx, rebind(insertUserSQL), u.ID, u.Username); err != nil {
		return fmt.Errorf("insert user, %w", err)
	}

	p := u.Profile
	if _, err := db.ExecContext(ctx, rebind(insertProfileSQL), p.ID, p.UserID, p.FirstName, p.LastName); err != nil {
		return fmt.Errorf("insert user profile, %w", err)
	}
	return nil
}

// seedDatabase 逐个写入用户，先写 user 再写 user_profile
//
// 客户端支持事务时每个用户一个事务，否则两条语句各自提交
func seedDatabase(ctx context.Context, db Client, users []*user) error {
	txDB, withTx := db.(Transactional)

	for i, u := range users {
		var err error
		if withTx {
			err = txDB.WithTx(ctx, func(tx Execer) error {
				return insertUser(ctx, tx, db.Rebind, u)
			})
		} else {
			err = insertUser(ctx, db, db.Rebind, u)
		}

		if err != nil {
			return fmt.Errorf("seed user %d, %w", i, err)
		}
	}

	slog.Debug("seed database",
		slog.String("users", humanize.Comma(int64(len(users)))),
		slog.Bool("transaction", withTx))
	return nil
}

// syncReplica 同步本地副本，然后等待 delay 让副本落地
func syncReplica(ctx context.Context, db ReplicaSyncer, delay time.Duration) error {
	startTime := time.Now()
	if err := db.Sync(ctx); err != nil {
		return err
	}
	slog.Debug("sync replica", slog.Duration("duration", time.Since(startTime)))

	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// measure 顺序执行 count 次关联查询，结果行直接丢弃
func measure(ctx context.Context, db Client, count int, now func() time.Time) (Result, error) {
	if count <= 0 {
		return Result{}, fmt.Errorf("query count must be positive, got %d", count)
	}

	startTime := now()
	for i := 0; i < count; i++ {
		var rows []joinRow
		if err := db.SelectContext(ctx, &rows, joinSQL); err != nil {
			return Result{}, fmt.Errorf("query %d, %w", i, err)
		}
	}

	return Result{
		Queries: count,
		Elapsed: now().Sub(startTime),
	}, nil
}

func report(out io.Writer, result Result) {
	fmt.Fprintln(out, result)
}
