// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the KeyGate CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygate",
		Short: "KeyGate - account registration and credential issuance",
		Long: `KeyGate registers user accounts and issues signed access and
refresh tokens, backed by PostgreSQL and delivered as httpOnly cookies.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
