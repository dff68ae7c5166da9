// Package integration provides test utilities for running integration tests
// with testcontainers. These tests require Docker to be running.
//
// Usage:
//
//	go test ./tests/integration/
//
// The tests start a single PostgreSQL container for the package, create the
// schema, and clean up after completion.
package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lumenvault/backend/internal/db"
	"github.com/lumenvault/backend/internal/models"
)

// TestContainer holds the PostgreSQL container and connection details
type TestContainer struct {
	Container testcontainers.Container
	DB        *db.DB
	Config    *db.Config
}

var suiteContainer *TestContainer

// setupWithContext creates and starts a PostgreSQL container and prepares the
// schema the engine reads from.
func setupWithContext(ctx context.Context) (*TestContainer, error) {
	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("lumenvault_test"),
		postgres.WithUsername("lumenvault_user"),
		postgres.WithPassword("lumenvault_password"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	config := &db.Config{
		Host:     host,
		Port:     port.Port(),
		User:     "lumenvault_user",
		Password: "lumenvault_password",
		Name:     "lumenvault_test",
		SSLMode:  "disable",
	}

	database, err := db.Connect(config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := database.AutoMigrate(
		&models.Vault{},
		&models.VaultAllocation{},
		&models.VaultTransaction{},
		&models.ValueSnapshot{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &TestContainer{
		Container: pgContainer,
		DB:        database,
		Config:    config,
	}, nil
}

// resetTables clears all engine tables between tests
func resetTables(tc *TestContainer) error {
	for _, table := range []string{"vault_allocations", "vault_transactions", "value_snapshots", "vaults"} {
		if err := tc.DB.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to reset table %s: %w", table, err)
		}
	}
	return nil
}
