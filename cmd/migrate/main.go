package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/config"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/database"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/database/migrations"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Long: `Applies every pending migration to the database selected by DB_DRIVER
(sqlite, postgres or mysql) and lists the tables it manages.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db-path") {
				cfg.DatabasePath = dbPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&dbPath, "db-path", "", "SQLite file to migrate (overrides DATABASE_PATH)")
	return cmd
}

// open maps the configured driver to its database/sql driver and DSN.
func open(cfg *config.Config) (*sql.DB, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return sql.Open("sqlite3", database.SQLiteDSN(cfg.DatabasePath))
	case config.DriverPostgres:
		return sql.Open("postgres", cfg.PostgresDSN())
	case config.DriverMySQL:
		return sql.Open("mysql", cfg.MySQLDSN())
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	db, err := open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(out, "close database: %v\n", err)
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	fmt.Fprintf(out, "Connected to %s database\n", cfg.DBDriver)

	applied, err := migrations.Apply(ctx, db, cfg.DBDriver)
	for _, v := range applied {
		fmt.Fprintf(out, "  ✓ %s\n", v)
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if len(applied) == 0 {
		fmt.Fprintln(out, "No pending migrations")
	}

	tables, err := listTables(ctx, db, cfg.DBDriver)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\nTables:")
	for _, t := range tables {
		fmt.Fprintf(out, "  ✓ %s\n", t)
	}
	return nil
}

func listTables(ctx context.Context, db *sql.DB, driver string) ([]string, error) {
	var query string
	switch driver {
	case config.DriverPostgres:
		query = `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema() ORDER BY table_name`
	case config.DriverMySQL:
		query = `SELECT table_name FROM information_schema.tables
			WHERE table_schema = DATABASE() ORDER BY table_name`
	default:
		query = `SELECT name FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}
