package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"contractguide/internal/determination"
)

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.AddCommand(tablesShowCmd)
	tablesCmd.AddCommand(tablesValidateCmd)
	tablesCmd.AddCommand(tablesReferenceCmd)
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Inspect the determination tables",
}

var tablesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective tables (defaults plus --tables override) as YAML",
	RunE:  runTablesShow,
}

var tablesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective tables",
	Long:  "Loads the built-in tables and the --tables override and checks that every\ncontract type and special reason is covered. Exit code 1 when invalid.",
	RunE:  runTablesValidate,
}

var tablesReferenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "List selectable contract types and special reasons",
	RunE:  runTablesReference,
}

func runTablesShow(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	out, err := engine.Tables().Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runTablesValidate(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	t := engine.Tables()
	source := "built-in"
	if tablesPath != "" {
		source = tablesPath
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %s tables valid (%d contract types, %d reasons, %d procedure steps)\n",
		source, len(t.ContractTypes), len(t.Reasons), len(t.Procedure))
	return nil
}

func runTablesReference(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	service, err := determination.NewService(engine)
	if err != nil {
		return err
	}
	ref := service.Reference()

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "契約種別:")
	for _, ct := range ref.ContractTypes {
		threshold := "-"
		if ct.OfficeThreshold != nil {
			threshold = ct.OfficeThreshold.String() + "万円超"
		}
		fmt.Fprintf(w, "  %s  %-20s 上限 %s万円  契約検査課 %s  %s\n",
			ct.Type.Code(), ct.Type.String(), ct.PriceLimit, threshold, ct.Name)
	}
	fmt.Fprintln(w, "特殊事由:")
	for _, r := range ref.Reasons {
		sourcing := "2者以上"
		if r.OneParty {
			sourcing = "1者可"
		}
		fmt.Fprintf(w, "  %s  %s  [%s]\n", r.Reason.Code(), r.Name, sourcing)
	}
	return nil
}
