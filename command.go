package main

import (
	"errors"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// opener 打开对应数据库的客户端
type opener func(Config) (Client, error)

var defaultOpeners = map[Backend]opener{
	BackendLibSQL:   openLibSQL,
	BackendPostgres: openPGSQL,
	BackendSQLite:   openSQLite,
}

var backendUsage = map[Backend]string{
	BackendLibSQL:   "Measure a libSQL embedded replica (LIBSQL_DATABASE_URL, LIBSQL_AUTH_TOKEN)",
	BackendPostgres: "Measure a PostgreSQL database over TLS (POSTGRES_DATABASE_URL)",
	BackendSQLite:   "Measure a local SQLite file as a baseline",
}

func newRootCmd(openers map[Backend]opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "joinbench",
		Short:         "Read latency benchmark of a user/user_profile join",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	for _, backend := range []Backend{BackendLibSQL, BackendPostgres, BackendSQLite} {
		root.AddCommand(newBackendCmd(backend, openers[backend]))
	}
	return root
}

func newBackendCmd(backend Backend, open opener) *cobra.Command {
	return &cobra.Command{
		Use:   string(backend),
		Short: backendUsage[backend],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(backend)
			if err != nil {
				warnMissing(cmd.ErrOrStderr(), err)
				return err
			}
			logLevel.Set(cfg.LogLevel)

			db, err := open(cfg)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, db, cmd.OutOrStdout())
		},
	}
}

// warnMissing 为每个缺失的环境变量输出一行提示
func warnMissing(w io.Writer, err error) {
	var missing *ConfigMissingError
	if !errors.As(err, &missing) {
		return
	}

	warn := color.New(color.FgYellow)
	for _, name := range missing.Vars {
		warn.Fprintf(w, "Please define the %s environment variable.\n", name)
	}
}
