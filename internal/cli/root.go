package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"contractguide/internal/determination"
)

var tablesPath string

var rootCmd = &cobra.Command{
	Use:   "contractguide",
	Short: "Negotiated-contract (随意契約) decision aid",
	Long: "Determines the applicable clause of 施行令第167条の2, the quotation requirement,\n" +
		"the processing office, the contract form and the procedure for a planned contract.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tablesPath, "tables", "", "Path to a tables override YAML (optional)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadEngine() (*determination.Engine, error) {
	tables, err := determination.LoadTables(tablesPath)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	return determination.NewEngine(tables)
}
