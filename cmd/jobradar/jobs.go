package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var jobsLimit int

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List pending (unnotified) listings",
	Long:  "Prints stored listings that have not been delivered yet, most recently discovered first.",
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().IntVarP(&jobsLimit, "limit", "n", 0, "show at most n listings (0 = all)")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
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
	total, err := s.TotalListings()
	if err != nil {
		logger.Error("failed to count listings", "error", err)
		os.Exit(1)
	}

	if jobsLimit > 0 && len(listings) > jobsLimit {
		listings = listings[:jobsLimit]
	}

	if len(listings) == 0 {
		fmt.Printf("no pending listings (%d stored in total)\n", total)
		return nil
	}

	fmt.Printf("%-40s %-20s %-15s %6s  %s\n", "Title", "Company", "Source", "Score", "URL")
	fmt.Println(strings.Repeat("─", 100))
	for _, l := range listings {
		fmt.Printf("%-40s %-20s %-15s %6.0f  %s\n",
			truncate(l.Title, 40), truncate(l.Company, 20), l.Source, l.Score, l.URL)
	}
	fmt.Printf("\n%d pending, %d stored in total\n", len(listings), total)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
