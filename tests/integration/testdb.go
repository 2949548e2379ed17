// Package integration runs the document service against real PostgreSQL and
// Redis instances started with testcontainers.
package integration

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/billydoc/backend/internal/app"
	"github.com/billydoc/backend/internal/infrastructure/config"
	"github.com/billydoc/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const (
	testDBName     = "billy_test"
	testDBUser     = "postgres"
	testDBPassword = "billy123"
)

var (
	// Shared containers for all tests in the package
	sharedPostgres   testcontainers.Container
	sharedPostgresDB config.DatabaseConfig
	sharedRedis      testcontainers.Container
	sharedRedisCfg   config.RedisConfig
	sharedMu         sync.Mutex
)

// TestDB is a migrated PostgreSQL database for one test
type TestDB struct {
	*persistence.Database
	Config config.DatabaseConfig
	t      *testing.T
}

func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("SKIP_INTEGRATION is set")
	}
}

// NewTestDB connects to the shared PostgreSQL container, starting and
// migrating it on first use. Tables are truncated before the test runs.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipUnlessIntegration(t)

	cfg := postgresConfig(t)
	db, err := persistence.NewDatabase(&cfg)
	require.NoError(t, err, "Failed to connect to database")

	tdb := &TestDB{Database: db, Config: cfg, t: t}
	tdb.CleanTables()

	t.Cleanup(func() {
		_ = db.Close()
	})
	return tdb
}

func postgresConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedPostgres != nil {
		return sharedPostgresDB
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		Host:         host,
		Port:         port.Int(),
		User:         testDBUser,
		Password:     testDBPassword,
		DBName:       testDBName,
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	db, err := persistence.NewDatabase(&cfg)
	require.NoError(t, err, "Failed to connect to database")
	defer func() { _ = db.Close() }()
	require.NoError(t, app.Migrate(db, zap.NewNop()), "Failed to run migrations")

	sharedPostgres = container
	sharedPostgresDB = cfg
	return cfg
}

// NewTestRedis returns the connection settings of the shared Redis container
func NewTestRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	skipUnlessIntegration(t)

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedRedis != nil {
		return sharedRedisCfg
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	sharedRedis = container
	sharedRedisCfg = config.RedisConfig{
		Enabled:   true,
		Host:      host,
		Port:      port.Int(),
		KeyPrefix: "billy-test:",
	}
	return sharedRedisCfg
}

// CleanTables truncates every application table, keeping schema_migrations
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to get table names")

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			tdb.t.Logf("Warning: Failed to truncate table %s: %v", table, err)
		}
	}
}

// CleanupContainers terminates the shared containers. Call it from TestMain.
func CleanupContainers() {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sharedPostgres != nil {
		_ = sharedPostgres.Terminate(ctx)
		sharedPostgres = nil
	}
	if sharedRedis != nil {
		_ = sharedRedis.Terminate(ctx)
		sharedRedis = nil
	}
}
