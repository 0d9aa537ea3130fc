// Command mochowctl runs administrative operations against a Mochow server
// and prints the results as JSON.
//
// Connection settings come from a YAML file (-config, MOCHOW_CONFIG or
// ./mochow.yaml) and MOCHOW_* environment variables. A .env file in the
// working directory is loaded first.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	mochow "github.com/baidu/mochow-sdk-go"
)

const usage = `usage: mochowctl [-config file] [-timeout d] [-debug] <command> [args]

commands:
  list-databases
  create-database <database>
  drop-database <database>
  list-tables <database>
  describe-table <database> <table>
  stats <database> <table>
  select [-filter expr] [-limit n] <database> <table>`

// Config holds the streams a run writes to.
type Config struct {
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() *Config {
	return &Config{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// ClientInterface is the part of *mochow.Client the commands use.
type ClientInterface interface {
	ListDatabase(ctx context.Context) (*mochow.ListDatabaseResponse, error)
	CreateDatabase(ctx context.Context, database string) error
	DropDatabase(ctx context.Context, database string) error
	ListTable(ctx context.Context, database string) (*mochow.ListTableResponse, error)
	DescribeTable(ctx context.Context, database, table string) (*mochow.DescribeTableResponse, error)
	ShowTableStats(ctx context.Context, database, table string) (*mochow.ShowTableStatsResponse, error)
	SelectAll(ctx context.Context, req *mochow.SelectRequest, fn func(*mochow.SelectResponse) error) error
	Close() error
}

var exitFunc = os.Exit

// clientFactory builds a client from the layered configuration.
var clientFactory = func(configPath string, logger *slog.Logger) (ClientInterface, error) {
	cfg, err := mochow.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger
	return mochow.NewClient(cfg)
}

func run(args []string, cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	name := "mochowctl"
	if len(args) > 0 {
		name = args[0]
		args = args[1:]
	}

	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	configPath := fset.String("config", "", "path to a YAML config file")
	timeout := fset.Duration("timeout", 60*time.Second, "overall command timeout")
	debug := fset.Bool("debug", false, "log requests to stderr")
	if err := fset.Parse(args); err != nil {
		return fmt.Errorf("%v\n%s", err, usage)
	}

	rest := fset.Args()
	if len(rest) == 0 {
		return errors.New(usage)
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	client, err := clientFactory(*configPath, logger)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	command, cmdArgs := rest[0], rest[1:]
	switch command {
	case "list-databases":
		return runListDatabases(ctx, client, cfg)
	case "create-database":
		if len(cmdArgs) != 1 {
			return errors.New("usage: mochowctl create-database <database>")
		}
		return runCreateDatabase(ctx, client, cfg, cmdArgs[0])
	case "drop-database":
		if len(cmdArgs) != 1 {
			return errors.New("usage: mochowctl drop-database <database>")
		}
		return runDropDatabase(ctx, client, cfg, cmdArgs[0])
	case "list-tables":
		if len(cmdArgs) != 1 {
			return errors.New("usage: mochowctl list-tables <database>")
		}
		return runListTables(ctx, client, cfg, cmdArgs[0])
	case "describe-table":
		if len(cmdArgs) != 2 {
			return errors.New("usage: mochowctl describe-table <database> <table>")
		}
		return runDescribeTable(ctx, client, cfg, cmdArgs[0], cmdArgs[1])
	case "stats":
		if len(cmdArgs) != 2 {
			return errors.New("usage: mochowctl stats <database> <table>")
		}
		return runStats(ctx, client, cfg, cmdArgs[0], cmdArgs[1])
	case "select":
		return runSelect(ctx, client, cfg, cmdArgs)
	default:
		return fmt.Errorf("unknown command: %s\n%s", command, usage)
	}
}

func runListDatabases(ctx context.Context, client ClientInterface, cfg *Config) error {
	resp, err := client.ListDatabase(ctx)
	if err != nil {
		return fmt.Errorf("list databases: %w", err)
	}
	return writeJSON(cfg.Stdout, map[string][]string{"databases": nonNil(resp.Databases)})
}

func runCreateDatabase(ctx context.Context, client ClientInterface, cfg *Config, database string) error {
	if err := client.CreateDatabase(ctx, database); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	return writeJSON(cfg.Stdout, map[string]bool{"success": true})
}

func runDropDatabase(ctx context.Context, client ClientInterface, cfg *Config, database string) error {
	if err := client.DropDatabase(ctx, database); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	return writeJSON(cfg.Stdout, map[string]bool{"success": true})
}

func runListTables(ctx context.Context, client ClientInterface, cfg *Config, database string) error {
	resp, err := client.ListTable(ctx, database)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	return writeJSON(cfg.Stdout, map[string][]string{"tables": nonNil(resp.Tables)})
}

func runDescribeTable(ctx context.Context, client ClientInterface, cfg *Config, database, table string) error {
	resp, err := client.DescribeTable(ctx, database, table)
	if err != nil {
		return fmt.Errorf("describe table: %w", err)
	}
	return writeJSON(cfg.Stdout, resp.Table)
}

// StatsOutput is the JSON printed by the stats command.
type StatsOutput struct {
	RowCount         int64 `json:"rowCount"`
	MemorySizeInByte int64 `json:"memorySizeInByte"`
	DiskSizeInByte   int64 `json:"diskSizeInByte"`
}

func runStats(ctx context.Context, client ClientInterface, cfg *Config, database, table string) error {
	resp, err := client.ShowTableStats(ctx, database, table)
	if err != nil {
		return fmt.Errorf("table stats: %w", err)
	}
	return writeJSON(cfg.Stdout, StatsOutput{
		RowCount:         resp.RowCount,
		MemorySizeInByte: resp.MemorySizeInByte,
		DiskSizeInByte:   resp.DiskSizeInByte,
	})
}

// runSelect prints every matching row, one JSON object per line.
func runSelect(ctx context.Context, client ClientInterface, cfg *Config, args []string) error {
	fset := flag.NewFlagSet("select", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	filter := fset.String("filter", "", "row filter expression")
	limit := fset.Int("limit", 100, "rows per page")
	if err := fset.Parse(args); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	if fset.NArg() != 2 {
		return errors.New("usage: mochowctl select [-filter expr] [-limit n] <database> <table>")
	}

	req := &mochow.SelectRequest{
		Database: fset.Arg(0),
		Table:    fset.Arg(1),
		Filter:   *filter,
		Limit:    *limit,
	}
	enc := json.NewEncoder(cfg.Stdout)
	err := client.SelectAll(ctx, req, func(resp *mochow.SelectResponse) error {
		for _, row := range resp.Rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	exitFunc(1)
}
