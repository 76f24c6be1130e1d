package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobradar/internal/browse"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse pending listings interactively",
	Long:  "Opens a terminal UI over the unnotified listings with a scrollable detail view.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	s, release, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer release()

	listings, err := s.UnnotifiedListings()
	if err != nil {
		logger.Error("failed to load listings", "error", err)
		os.Exit(1)
	}
	if len(listings) == 0 {
		fmt.Println("no pending listings to browse")
		return nil
	}

	return browse.Run(listings)
}
