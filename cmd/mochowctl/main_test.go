package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	mochow "github.com/baidu/mochow-sdk-go"
)

type mockClient struct {
	listDatabaseFn   func(ctx context.Context) (*mochow.ListDatabaseResponse, error)
	createDatabaseFn func(ctx context.Context, database string) error
	dropDatabaseFn   func(ctx context.Context, database string) error
	listTableFn      func(ctx context.Context, database string) (*mochow.ListTableResponse, error)
	describeTableFn  func(ctx context.Context, database, table string) (*mochow.DescribeTableResponse, error)
	showTableStatsFn func(ctx context.Context, database, table string) (*mochow.ShowTableStatsResponse, error)
	selectAllFn      func(ctx context.Context, req *mochow.SelectRequest, fn func(*mochow.SelectResponse) error) error
	closed           bool
}

func (m *mockClient) ListDatabase(ctx context.Context) (*mochow.ListDatabaseResponse, error) {
	if m.listDatabaseFn != nil {
		return m.listDatabaseFn(ctx)
	}
	return &mochow.ListDatabaseResponse{}, nil
}

func (m *mockClient) CreateDatabase(ctx context.Context, database string) error {
	if m.createDatabaseFn != nil {
		return m.createDatabaseFn(ctx, database)
	}
	return nil
}

func (m *mockClient) DropDatabase(ctx context.Context, database string) error {
	if m.dropDatabaseFn != nil {
		return m.dropDatabaseFn(ctx, database)
	}
	return nil
}

func (m *mockClient) ListTable(ctx context.Context, database string) (*mochow.ListTableResponse, error) {
	if m.listTableFn != nil {
		return m.listTableFn(ctx, database)
	}
	return &mochow.ListTableResponse{}, nil
}

func (m *mockClient) DescribeTable(ctx context.Context, database, table string) (*mochow.DescribeTableResponse, error) {
	if m.describeTableFn != nil {
		return m.describeTableFn(ctx, database, table)
	}
	return &mochow.DescribeTableResponse{}, nil
}

func (m *mockClient) ShowTableStats(ctx context.Context, database, table string) (*mochow.ShowTableStatsResponse, error) {
	if m.showTableStatsFn != nil {
		return m.showTableStatsFn(ctx, database, table)
	}
	return &mochow.ShowTableStatsResponse{}, nil
}

func (m *mockClient) SelectAll(ctx context.Context, req *mochow.SelectRequest, fn func(*mochow.SelectResponse) error) error {
	if m.selectAllFn != nil {
		return m.selectAllFn(ctx, req, fn)
	}
	return nil
}

func (m *mockClient) Close() error {
	m.closed = true
	return nil
}

// withClient swaps clientFactory for the duration of the test.
func withClient(t *testing.T, client ClientInterface) {
	t.Helper()
	original := clientFactory
	t.Cleanup(func() { clientFactory = original })
	clientFactory = func(string, *slog.Logger) (ClientInterface, error) {
		return client, nil
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Stdout != os.Stdout {
		t.Error("DefaultConfig().Stdout should be os.Stdout")
	}
	if cfg.Stderr != os.Stderr {
		t.Error("DefaultConfig().Stderr should be os.Stderr")
	}
}

func TestClientInterface_Implemented(t *testing.T) {
	var _ ClientInterface = (*mochow.Client)(nil)
}

func TestRun_NoArgs(t *testing.T) {
	cfg := &Config{Stdout: &bytes.Buffer{}}
	err := run([]string{"mochowctl"}, cfg)
	if err == nil {
		t.Fatal("run() should return error with no args")
	}
	if !strings.Contains(err.Error(), "usage") {
		t.Errorf("error should contain 'usage', got %v", err)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	client := &mockClient{}
	withClient(t, client)

	err := run([]string{"mochowctl", "unknown-command"}, &Config{Stdout: &bytes.Buffer{}})
	if err == nil {
		t.Fatal("run() should return error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("error should contain 'unknown command', got %v", err)
	}
	if !client.closed {
		t.Error("client should be closed after run")
	}
}

func TestRun_ClientFactoryError(t *testing.T) {
	original := clientFactory
	defer func() { clientFactory = original }()
	clientFactory = func(string, *slog.Logger) (ClientInterface, error) {
		return nil, mochow.ErrMissingCredentials
	}

	err := run([]string{"mochowctl", "list-databases"}, &Config{Stdout: &bytes.Buffer{}})
	if !errors.Is(err, mochow.ErrMissingCredentials) {
		t.Errorf("run() error = %v, want ErrMissingCredentials", err)
	}
}

func TestRun_PassesConfigPath(t *testing.T) {
	original := clientFactory
	defer func() { clientFactory = original }()

	var gotPath string
	clientFactory = func(path string, _ *slog.Logger) (ClientInterface, error) {
		gotPath = path
		return &mockClient{}, nil
	}

	var stdout bytes.Buffer
	err := run([]string{"mochowctl", "-config", "/etc/mochow.yaml", "list-databases"}, &Config{Stdout: &stdout})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if gotPath != "/etc/mochow.yaml" {
		t.Errorf("config path = %q, want /etc/mochow.yaml", gotPath)
	}
}

func TestRun_ArgumentCounts(t *testing.T) {
	withClient(t, &mockClient{})

	commands := [][]string{
		{"create-database"},
		{"drop-database"},
		{"list-tables"},
		{"describe-table", "book"},
		{"stats", "book"},
		{"select", "book"},
	}
	for _, cmd := range commands {
		args := append([]string{"mochowctl"}, cmd...)
		err := run(args, &Config{Stdout: &bytes.Buffer{}})
		if err == nil || !strings.Contains(err.Error(), "usage") {
			t.Errorf("run(%v) error = %v, want usage error", cmd, err)
		}
	}
}

func TestRunListDatabases(t *testing.T) {
	client := &mockClient{
		listDatabaseFn: func(context.Context) (*mochow.ListDatabaseResponse, error) {
			return &mochow.ListDatabaseResponse{Databases: []string{"book"}}, nil
		},
	}

	var stdout bytes.Buffer
	if err := runListDatabases(context.Background(), client, &Config{Stdout: &stdout}); err != nil {
		t.Fatalf("runListDatabases error = %v", err)
	}

	var out map[string][]string
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(out["databases"]) != 1 || out["databases"][0] != "book" {
		t.Errorf("databases = %v, want [book]", out["databases"])
	}
}

func TestRunListDatabases_Empty(t *testing.T) {
	var stdout bytes.Buffer
	if err := runListDatabases(context.Background(), &mockClient{}, &Config{Stdout: &stdout}); err != nil {
		t.Fatalf("runListDatabases error = %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != `{"databases":[]}` {
		t.Errorf("output = %s, want empty list", got)
	}
}

func TestRunCreateAndDropDatabase(t *testing.T) {
	var created, dropped string
	client := &mockClient{
		createDatabaseFn: func(_ context.Context, database string) error {
			created = database
			return nil
		},
		dropDatabaseFn: func(_ context.Context, database string) error {
			dropped = database
			return nil
		},
	}
	withClient(t, client)

	var stdout bytes.Buffer
	if err := run([]string{"mochowctl", "create-database", "book"}, &Config{Stdout: &stdout}); err != nil {
		t.Fatalf("create-database error = %v", err)
	}
	if err := run([]string{"mochowctl", "drop-database", "book"}, &Config{Stdout: &stdout}); err != nil {
		t.Fatalf("drop-database error = %v", err)
	}

	if created != "book" || dropped != "book" {
		t.Errorf("created = %q, dropped = %q, want book", created, dropped)
	}
	if strings.Count(stdout.String(), `"success":true`) != 2 {
		t.Errorf("output = %q, want two success lines", stdout.String())
	}
}

func TestRunCreateDatabase_Error(t *testing.T) {
	client := &mockClient{
		createDatabaseFn: func(context.Context, string) error {
			return &mochow.ServiceError{Code: mochow.CodeDBAlreadyExist, StatusCode: 400}
		},
	}

	err := runCreateDatabase(context.Background(), client, &Config{Stdout: &bytes.Buffer{}}, "book")
	if !errors.Is(err, mochow.ErrDatabaseAlreadyExists) {
		t.Errorf("runCreateDatabase error = %v, want ErrDatabaseAlreadyExists", err)
	}
	if !strings.Contains(err.Error(), "create database") {
		t.Errorf("error should contain 'create database', got %v", err)
	}
}

func TestRunListTables_Error(t *testing.T) {
	client := &mockClient{
		listTableFn: func(context.Context, string) (*mochow.ListTableResponse, error) {
			return nil, errors.New("list failed")
		},
	}

	err := runListTables(context.Background(), client, &Config{Stdout: &bytes.Buffer{}}, "book")
	if err == nil || !strings.Contains(err.Error(), "list tables") {
		t.Errorf("runListTables error = %v, want list tables error", err)
	}
}

func TestRunDescribeTable(t *testing.T) {
	client := &mockClient{
		describeTableFn: func(_ context.Context, database, table string) (*mochow.DescribeTableResponse, error) {
			return &mochow.DescribeTableResponse{Table: &mochow.Table{
				Database: database,
				Table:    table,
				State:    mochow.TableStateNormal,
			}}, nil
		},
	}

	var stdout bytes.Buffer
	if err := runDescribeTable(context.Background(), client, &Config{Stdout: &stdout}, "book", "book_segments"); err != nil {
		t.Fatalf("runDescribeTable error = %v", err)
	}

	var tbl mochow.Table
	if err := json.Unmarshal(stdout.Bytes(), &tbl); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if tbl.Table != "book_segments" || tbl.State != mochow.TableStateNormal {
		t.Errorf("table = %+v", tbl)
	}
}

func TestRunStats(t *testing.T) {
	client := &mockClient{
		showTableStatsFn: func(context.Context, string, string) (*mochow.ShowTableStatsResponse, error) {
			return &mochow.ShowTableStatsResponse{RowCount: 5, MemorySizeInByte: 10, DiskSizeInByte: 20}, nil
		},
	}

	var stdout bytes.Buffer
	if err := runStats(context.Background(), client, &Config{Stdout: &stdout}, "book", "book_segments"); err != nil {
		t.Fatalf("runStats error = %v", err)
	}

	var out StatsOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if out != (StatsOutput{RowCount: 5, MemorySizeInByte: 10, DiskSizeInByte: 20}) {
		t.Errorf("stats = %+v", out)
	}
}

func TestRunSelect(t *testing.T) {
	var gotReq *mochow.SelectRequest
	client := &mockClient{
		selectAllFn: func(_ context.Context, req *mochow.SelectRequest, fn func(*mochow.SelectResponse) error) error {
			gotReq = req
			pages := []*mochow.SelectResponse{
				{IsTruncated: true, Rows: []mochow.Row{{"id": "0001"}, {"id": "0002"}}},
				{Rows: []mochow.Row{{"id": "0003"}}},
			}
			for _, p := range pages {
				if err := fn(p); err != nil {
					return err
				}
			}
			return nil
		},
	}

	var stdout bytes.Buffer
	args := []string{"-filter", "page > 10", "-limit", "2", "book", "book_segments"}
	if err := runSelect(context.Background(), client, &Config{Stdout: &stdout}, args); err != nil {
		t.Fatalf("runSelect error = %v", err)
	}

	if gotReq.Database != "book" || gotReq.Table != "book_segments" {
		t.Errorf("request target = %s.%s", gotReq.Database, gotReq.Table)
	}
	if gotReq.Filter != "page > 10" || gotReq.Limit != 2 {
		t.Errorf("filter = %q, limit = %d", gotReq.Filter, gotReq.Limit)
	}

	var ids []string
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		var row map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			t.Fatalf("failed to parse line %q: %v", scanner.Text(), err)
		}
		ids = append(ids, row["id"].(string))
	}
	if strings.Join(ids, ",") != "0001,0002,0003" {
		t.Errorf("ids = %v, want 0001,0002,0003", ids)
	}
}

func TestRunSelect_Error(t *testing.T) {
	client := &mockClient{
		selectAllFn: func(context.Context, *mochow.SelectRequest, func(*mochow.SelectResponse) error) error {
			return mochow.ErrTableNotFound
		},
	}

	err := runSelect(context.Background(), client, &Config{Stdout: &bytes.Buffer{}}, []string{"book", "missing"})
	if !errors.Is(err, mochow.ErrTableNotFound) {
		t.Errorf("runSelect error = %v, want ErrTableNotFound", err)
	}
}

func TestFatal(t *testing.T) {
	originalExitFunc := exitFunc
	defer func() { exitFunc = originalExitFunc }()

	var exitCode int
	exitFunc = func(code int) {
		exitCode = code
	}

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fatal("error %d: %s", 42, "something went wrong")

	w.Close()
	os.Stderr = oldStderr
	var buf bytes.Buffer
	buf.ReadFrom(r)

	if exitCode != 1 {
		t.Errorf("exitCode = %d, want 1", exitCode)
	}
	if got, want := buf.String(), "error 42: something went wrong\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
