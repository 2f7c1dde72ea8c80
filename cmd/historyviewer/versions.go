package main

import (
	"fmt"
	"os"

	"github.com/aretw0/historyviewer/internal/cli"
	"github.com/aretw0/historyviewer/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the versions of a record",
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := recordFlags(cmd)
		if err != nil {
			return err
		}

		svc, err := buildServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		versions, err := svc.Viewer.Versions(cmd.Context(), ref)
		if err != nil {
			return err
		}

		render := tui.NewRenderer(!tui.IsTerminal(os.Stdout))
		out, err := render(cli.VersionsTable(ref, versions))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	addRecordFlags(versionsCmd)
}
