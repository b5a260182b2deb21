package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandMissingConfig(t *testing.T) {
	clearEnv(t)

	opened := 0
	open := func(Config) (Client, error) {
		opened++
		return &fakeClient{}, nil
	}

	cmd := newRootCmd(map[Backend]opener{
		BackendLibSQL:   open,
		BackendPostgres: open,
		BackendSQLite:   open,
	})
	stderr := &bytes.Buffer{}
	cmd.SetErr(stderr)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"libsql"})

	err := cmd.Execute()

	var missing *ConfigMissingError
	require.ErrorAs(t, err, &missing)
	assert.Zero(t, opened)
	assert.Contains(t, stderr.String(), "Please define the LIBSQL_DATABASE_URL environment variable.")
	assert.Contains(t, stderr.String(), "Please define the LIBSQL_AUTH_TOKEN environment variable.")
}

func TestCommandRun(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_DATABASE_URL", "postgres://bench@localhost:5432/bench")

	db := &fakeTxClient{}
	var got Config
	cmd := newRootCmd(map[Backend]opener{
		BackendPostgres: func(cfg Config) (Client, error) {
			got = cfg
			return db, nil
		},
	})
	stdout := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetArgs([]string{"postgres"})

	require.NoError(t, cmd.Execute())

	assert.Equal(t, "postgres://bench@localhost:5432/bench", got.PostgresURL)
	assert.Equal(t, 1000, db.txs)
	assert.Equal(t, 250, db.queries)
	assert.Equal(t, 2, db.drop)
	assert.Equal(t, 1, db.closes)
	assert.Contains(t, stdout.String(), "per query")
}
