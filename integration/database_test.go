//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestQuizscaleWithMySQL tests the run history commands with a MySQL backend.
func TestQuizscaleWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "quizscale",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/quizscale?parseTime=true", host, port.Port())
	exerciseRunStore(t, "mysql", connStr)
}

// TestQuizscaleWithPostgres tests the run history commands with a PostgreSQL backend.
func TestQuizscaleWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseRunStore(t, "postgresql", connStr)
}

// exerciseRunStore runs the full run history lifecycle against one backend.
func exerciseRunStore(t *testing.T, backend, connStr string) {
	t.Setenv("QUIZSCALE_RUN_BACKEND", backend)
	t.Setenv("QUIZSCALE_RUN_DB_CONNECT", connStr)

	_, err := runQuizscale(t, "runs", "clear")
	require.NoError(t, err)

	_, err = runQuizscale(t, "runs", "migrate")
	require.NoError(t, err)

	path := writeQuiz(t, "week1.csv", quizCSV)
	for range 2 {
		_, err = runQuizscale(t, "convert", path, "--original-max", "6", "--target-max", "10", "--question-value", "3")
		require.NoError(t, err)
	}

	stdout, err := runQuizscale(t, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, backend)

	exportBase := filepath.Join(t.TempDir(), "runs")
	_, err = runQuizscale(t, "runs", "export", "--output-file", exportBase)
	require.NoError(t, err)
	for _, suffix := range []string{".conversion_runs.parquet", ".question_weights.parquet", ".student_scores.parquet", ".question_scores.parquet"} {
		info, err := os.Stat(exportBase + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	_, err = runQuizscale(t, "runs", "migrate", "--target-version", "0")
	require.NoError(t, err)
	_, err = runQuizscale(t, "runs", "clear")
	require.NoError(t, err)
}
