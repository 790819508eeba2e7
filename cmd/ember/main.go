package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	_ "github.com/emberdb/ember/driver"
	"github.com/emberdb/ember/metrics"
	"github.com/emberdb/ember/server"
	"github.com/emberdb/ember/tx"
)

var (
	dbDir       string
	metricsAddr string
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	server.Logger = log.Logger
	tx.SetLogger(log.Logger)

	root := &cobra.Command{
		Use:   "ember",
		Short: "ember is a disk-backed relational database engine",
		RunE:  run,
	}
	root.Flags().StringVar(&dbDir, "dir", "./mydb", "directory holding the database's files")
	root.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on, e.g. :9090 (disabled if empty)")

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("ember exited with an error")
	}
}

func run(_ *cobra.Command, _ []string) error {
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Error().Err(err).Str("addr", metricsAddr).Msg("metrics server stopped")
			}
		}()
		log.Info().Str("addr", metricsAddr).Msg("serving metrics")
	}

	defer func() {
		if err := os.RemoveAll(dbDir); err != nil {
			log.Error().Err(err).Str("dir", dbDir).Msg("failed to clean up database directory")
		}
	}()

	db, err := sql.Open("ember", dbDir)
	if err != nil {
		return fmt.Errorf("open ember: %w", err)
	}
	defer db.Close()

	log.Info().Str("dir", dbDir).Msg("creating table in auto-commit mode")
	if _, err = db.Exec(`CREATE TABLE student (sname VARCHAR(10), gradyear INT)`); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	log.Info().Msg("starting a transaction that will be rolled back")
	tx1, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx1: %w", err)
	}
	if _, err = tx1.Exec(`INSERT INTO student (sname, gradyear) VALUES ('Zoe', 9999)`); err != nil {
		_ = tx1.Rollback()
		return fmt.Errorf("insert in tx1: %w", err)
	}
	if err := tx1.Rollback(); err != nil {
		return fmt.Errorf("rollback tx1: %w", err)
	}

	log.Info().Msg("starting a transaction that will be committed")
	tx2, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx2: %w", err)
	}
	inserts := []string{
		`INSERT INTO student (sname, gradyear) VALUES ('Alice', 2023)`,
		`INSERT INTO student (sname, gradyear) VALUES ('Bob', 2024)`,
		`INSERT INTO student (sname, gradyear) VALUES ('Charlie', 2025)`,
	}
	for _, stmt := range inserts {
		if _, err := tx2.Exec(stmt); err != nil {
			_ = tx2.Rollback()
			return fmt.Errorf("insert in tx2: %w", err)
		}
	}
	if err := tx2.Commit(); err != nil {
		return fmt.Errorf("commit tx2: %w", err)
	}

	rows, err := db.Query("SELECT sname, gradyear FROM student ORDER BY gradyear")
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var year int
		if err := rows.Scan(&name, &year); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		log.Info().Str("name", name).Int("gradyear", year).Msg("row")
	}
	return rows.Err()
}
