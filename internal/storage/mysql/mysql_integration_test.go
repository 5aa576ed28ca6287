//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hotel_reputation/internal/domain"
	mysqlrepo "hotel_reputation/internal/storage/mysql"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations", "mysql")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("docker-backed test skipped in -short mode")
	}
	// Let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reputation",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/reputation?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func TestRepo_MySQL_RunHistory(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	t0 := time.Date(2025, 9, 13, 6, 0, 0, 0, time.UTC)
	first := domain.RunRecord{
		ID: "6f1c9a52-7d0e-4a53-9f0b-0a3c1e2d4b01", Source: "booking", Date: "2025-09-13",
		Status: domain.RunWarning, Scored: 0, Total: 6, StartedAt: t0, FinishedAt: t0.Add(time.Minute),
	}
	second := domain.RunRecord{
		ID: "6f1c9a52-7d0e-4a53-9f0b-0a3c1e2d4b02", Source: "booking", Date: "2025-09-20",
		Status: domain.RunOK, Scored: 5, Total: 6, StartedAt: t0.Add(7 * 24 * time.Hour), FinishedAt: t0.Add(7*24*time.Hour + time.Minute),
	}
	for _, r := range []domain.RunRecord{first, second} {
		if err := repo.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	// re-recording the same id updates it
	first.Status, first.Scored = domain.RunOK, 4
	if err := repo.RecordRun(ctx, first); err != nil {
		t.Fatalf("RecordRun (update): %v", err)
	}

	runs, err := repo.ListRuns(ctx, "booking", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second.ID || runs[1].Status != domain.RunOK || runs[1].Scored != 4 {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if !runs[0].StartedAt.Equal(second.StartedAt) {
		t.Fatalf("started_at round trip: got %v want %v", runs[0].StartedAt, second.StartedAt)
	}

	miss := domain.Miss{Source: "booking", Hotel: "NAU São Rafael Atlântico", Date: "2025-09-20", Reason: domain.MissFetch}
	if err := repo.LogMiss(ctx, miss); err != nil {
		t.Fatalf("LogMiss: %v", err)
	}
	miss.Reason = domain.MissNoMatch
	if err := repo.LogMiss(ctx, miss); err != nil {
		t.Fatalf("LogMiss (again): %v", err)
	}
	misses, err := repo.ListMisses(ctx, "booking", "2025-09-20")
	if err != nil {
		t.Fatalf("ListMisses: %v", err)
	}
	if len(misses) != 1 || misses[0] != miss {
		t.Fatalf("unexpected misses: %+v", misses)
	}
}
