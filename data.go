package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/go-faker/faker/v4"
)

type user struct {
	ID       string `db:"id" faker:"-"`
	Username string `db:"username" faker:"username"`

	Profile *userProfile `db:"-" faker:"-"`
}

type userProfile struct {
	ID        string `db:"id" faker:"-"`
	UserID    string `db:"user_id" faker:"-"`
	FirstName string `db:"first_name" faker:"first_name"`
	LastName  string `db:"last_name" faker:"last_name"`
}

// joinRow 测量查询的结果行，读出后直接丢弃
type joinRow struct {
	Username  string `db:"username"`
	FirstName string `db:"first_name"`
}

// newID 纳秒时间戳拼接随机小数
//
// 同一进程内几乎不会重复，不保证全局唯一
func newID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10) +
		strconv.FormatFloat(rand.Float64(), 'f', -1, 64)
}

// newSeed 生成 n 个用户及其资料，写库之前全部生成完
func newSeed(n int) ([]*user, error) {
	users := make([]*user, 0, n)
	for i := 0; i < n; i++ {
		u := &user{}
		if err := faker.FakeData(u); err != nil {
			return nil, fmt.Errorf("fake user, %w", err)
		}
		u.ID = newID()

		p := &userProfile{}
		if err := faker.FakeData(p); err != nil {
			return nil, fmt.Errorf("fake user profile, %w", err)
		}
		p.ID = newID()
		p.UserID = u.ID

		u.Profile = p
		users = append(users, u)
	}
	return users, nil
}
