package main

import (
	"fmt"
	"os"

	"github.com/aretw0/historyviewer/internal/cli"
	"github.com/aretw0/historyviewer/internal/presentation/tui"
	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <current> <comparison>",
	Short: "Diff two value files field by field",
	Long: `Reads two JSON or YAML objects of field values and prints the form built
from <current> with every field diffed against <comparison>.
Insertions are shown green and deletions red on a terminal.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := cli.ReadValues(args[0])
		if err != nil {
			return err
		}
		comparison, err := cli.ReadValues(args[1])
		if err != nil {
			return err
		}

		svc, err := buildServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		fields := domain.FieldsFromValues(current, cli.SortedNames(current))
		out, err := svc.Viewer.Transform(cmd.Context(), fields, comparison)
		if err != nil {
			return err
		}
		cli.RenderDiff(cmd.OutOrStdout(), out, tui.IsTerminal(os.Stdout))
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Diff two stored versions of a record",
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := recordFlags(cmd)
		if err != nil {
			return err
		}
		from, _ := cmd.Flags().GetInt("from")
		to, _ := cmd.Flags().GetInt("to")

		svc, err := buildServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		cmp, err := svc.Viewer.Compare(cmd.Context(), ref, from, to)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: version %d (%s) -> version %d (%s)\n\n",
			ref, cmp.From.Version, cmp.From.AuthorName(), cmp.To.Version, cmp.To.AuthorName())
		cli.RenderDiff(out, cmp.Fields, tui.IsTerminal(os.Stdout))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().String("dir", "", "Directory of versioned documents (overrides config)")

	rootCmd.AddCommand(compareCmd)
	addRecordFlags(compareCmd)
	compareCmd.Flags().Int("from", 0, "Version to compare with")
	compareCmd.Flags().Int("to", 0, "Version the form is built from")
	_ = compareCmd.MarkFlagRequired("from")
	_ = compareCmd.MarkFlagRequired("to")
}

// buildServices wires a Viewer for one-shot commands. Logs stay quiet
// unless --debug is set.
func buildServices(cmd *cobra.Command) (*cli.Services, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	level := cfg.LogLevel
	if !debug {
		level = "error"
	}
	logger, err := cli.CreateLogger(level, debug)
	if err != nil {
		return nil, err
	}
	return cli.Build(cfg, logger, debug)
}

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().String("dir", "", "Directory of versioned documents (overrides config)")
	cmd.Flags().String("class", "", "Record class")
	cmd.Flags().String("id", "", "Record ID")
	_ = cmd.MarkFlagRequired("class")
	_ = cmd.MarkFlagRequired("id")
}

func recordFlags(cmd *cobra.Command) (domain.RecordRef, error) {
	class, _ := cmd.Flags().GetString("class")
	id, _ := cmd.Flags().GetString("id")
	if class == "" || id == "" {
		return domain.RecordRef{}, fmt.Errorf("both --class and --id are required")
	}
	return domain.RecordRef{Class: class, ID: id}, nil
}

