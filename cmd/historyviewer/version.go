package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/historyviewer"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of historyviewer",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "historyviewer version %s\n", strings.TrimSpace(historyviewer.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
