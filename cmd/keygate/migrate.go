// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending database migrations against the PostgreSQL database.`,
		RunE:  runMigrateUp,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE:  runMigrateDown,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		RunE:  runMigrateStatus,
	})

	return cmd
}

func newMigrator() (*store.Migrator, error) {
	// Get database URL from environment, never from flags or config files
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}
	return store.NewMigrator(databaseURL)
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	m, err := newMigrator()
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	cmd.Println("Running migrations...")
	if err := m.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	m, err := newMigrator()
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	cmd.Println("Rolling back migrations...")
	if err := m.Down(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "roll back migrations").Wrap(err)
	}

	cmd.Println("Rollback completed successfully")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	m, err := newMigrator()
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "read migration version").Wrap(err)
	}

	if version == 0 {
		cmd.Println("No migrations applied")
		return nil
	}

	cmd.Printf("Version: %d (dirty: %v)\n", version, dirty)
	return nil
}
