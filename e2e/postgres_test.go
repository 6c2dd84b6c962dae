package e2e_test

import (
	"context"
	"log"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	postgresOnce    sync.Once
	postgresDSN     string
	postgresErr     error
	postgresCleanup func()
)

// getSharedPostgresDatabase returns the DSN of a PostgreSQL container shared
// by all E2E tests. Each test should use its own table name.
func getSharedPostgresDatabase(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres e2e test in short mode")
	}

	postgresOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			postgresErr = err
			return
		}

		postgresCleanup = func() {
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				log.Printf("failed to terminate container: %s", err)
			}
		}

		postgresDSN, postgresErr = pgContainer.ConnectionString(ctx, "sslmode=disable")
	})

	if postgresErr != nil {
		t.Fatalf("failed to start postgres container: %v", postgresErr)
	}

	return postgresDSN
}
