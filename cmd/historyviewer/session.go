package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/historyviewer/internal/cli"
	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/aretw0/historyviewer/pkg/ports"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted compare selections",
	Long:  `List, inspect, and remove the compare selections kept in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions with a stored selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		sessions, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No active sessions found.")
			return nil
		}

		fmt.Fprintln(out, "Active Sessions:")
		for _, s := range sessions {
			fmt.Fprintln(out, "- "+s)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the selection of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		store, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		sel, err := store.Load(cmd.Context(), sessionID)
		if err != nil {
			return fmt.Errorf("loading session '%s': %w", sessionID, err)
		}

		data, err := json.MarshalIndent(struct {
			Phase     domain.Phase             `json:"phase"`
			Selection *domain.CompareSelection `json:"selection"`
		}{sel.Phase(), sel}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		var errs []error
		for _, sessionID := range args {
			if err := store.Delete(cmd.Context(), sessionID); err != nil {
				errs = append(errs, fmt.Errorf("removing '%s': %w", sessionID, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", sessionID)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

func openStore(cmd *cobra.Command) (ports.SelectionStore, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, _, closer, err := cli.NewStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	if closer == nil {
		closer = func() error { return nil }
	}
	return store, closer, nil
}
