package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"contractguide/internal/determination"
	"contractguide/internal/determination/handler"
	"contractguide/internal/render"
)

var (
	judgeType   string
	judgePrice  string
	judgeReason string
	judgeFormat string
)

func init() {
	rootCmd.AddCommand(judgeCmd)
	judgeCmd.Flags().StringVar(&judgeType, "type", "", "Contract type code (1-6) or slug (required)")
	judgeCmd.Flags().StringVar(&judgePrice, "price", "", "Planned price in 万円, tax included (required)")
	judgeCmd.Flags().StringVar(&judgeReason, "reason", "", "Special reason code (2,3,5,6,7,8,9); empty for none")
	judgeCmd.Flags().StringVarP(&judgeFormat, "format", "f", "text", "Output format (text|json)")
	_ = judgeCmd.MarkFlagRequired("type")
	_ = judgeCmd.MarkFlagRequired("price")
}

var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Evaluate one planned contract",
	Long: "Evaluates a contract type, planned price and optional special reason and\n" +
		"prints the determination.\n\n" +
		"Exit code 1 on invalid input.",
	Example: "  contractguide judge --type 2 --price 5\n" +
		"  contractguide judge --type construction --price 250 --reason 5 -f json",
	RunE: runJudge,
}

func runJudge(cmd *cobra.Command, args []string) error {
	ct, err := determination.ParseContractType(judgeType)
	if err != nil {
		return err
	}
	price, err := determination.ParsePrice(judgePrice)
	if err != nil {
		return err
	}
	reason, err := determination.ParseSpecialReason(judgeReason)
	if err != nil {
		return err
	}

	engine, err := loadEngine()
	if err != nil {
		return err
	}
	service, err := determination.NewService(engine)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := service.Evaluate(ctx, determination.Input{
		ContractType:  ct,
		PlannedPrice:  price,
		SpecialReason: reason,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch judgeFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(handler.FromResult(result))
	case "text":
		writeDetermination(out, result.Determination)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", judgeFormat)
	}
}

func writeDetermination(w io.Writer, d determination.Determination) {
	s := d.Summary
	fmt.Fprintln(w, "■ 入力内容")
	fmt.Fprintf(w, "  契約種別: %s\n", s.ContractTypeName)
	fmt.Fprintf(w, "  予定価格: %s万円 (%s)\n", s.PlannedPrice, render.Yen(s.PlannedPriceYen()))
	fmt.Fprintf(w, "  特殊事由: %s\n", s.ReasonName)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "■ 判定結果")
	fmt.Fprintf(w, "  適用条文: %s\n", render.Plain(d.Article.Text))
	fmt.Fprintf(w, "  見積徴取: %s\n", render.Plain(d.Quotation.Text))
	fmt.Fprintf(w, "  事務担当: %s\n", d.Office.Instruction)
	fmt.Fprintf(w, "  契約形式: %s\n", render.Plain(d.ContractForm.Text))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "■ 留意事項")
	for _, n := range d.Notes {
		fmt.Fprintf(w, "  - %s\n", render.Plain(n.Text))
	}
	fmt.Fprintf(w, "  %s\n", render.Plain(d.Flow))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "■ 手続き")
	for i, step := range d.Procedure {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step.Title)
		if step.Detail != "" {
			fmt.Fprintf(w, "     %s\n", render.Plain(step.Detail))
		}
		if step.Remark != "" {
			fmt.Fprintf(w, "     %s\n", strings.TrimSpace(step.Remark))
		}
	}
}
