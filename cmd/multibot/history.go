package main

import (
	"fmt"

	"multibot/internal/config"
	"multibot/internal/journal"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent handled requests from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if !cfg.Journal.Enabled {
				return fmt.Errorf("journal disabled in config")
			}
			dbPath := config.ExpandPath(cfg.Journal.DBPath)

			store, err := journal.NewStore(dbPath, logger)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("journal is empty")
				return nil
			}

			for _, e := range entries {
				line := fmt.Sprintf("%s  %-8s chat=%s  %-12s %s  %dms",
					e.CreatedAt.Format("2006-01-02 15:04:05"),
					e.Channel, e.ChatID, e.Outcome, e.Trigger, e.LatencyMS)
				if e.Error != "" {
					line += "  err=" + e.Error
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}
