package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  "Loads the config with all defaults applied and prints the result. Secrets are never shown.",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("search:")
	fmt.Printf("  keywords:    %s\n", strings.Join(cfg.Search.Keywords, ", "))
	fmt.Printf("  locations:   %s\n", strings.Join(cfg.Search.Locations, ", "))
	fmt.Printf("  tags:        %s\n", strings.Join(cfg.Search.Tags, ", "))
	fmt.Println("scrapers:")
	fmt.Printf("  enabled:     %s\n", strings.Join(cfg.Scrapers.Enabled, ", "))
	fmt.Printf("  boards:      %d\n", len(cfg.Scrapers.Boards))
	fmt.Printf("  rate_limit:  %s\n", cfg.Scrapers.RateLimit)
	fmt.Printf("  max_retries: %d\n", cfg.Scrapers.MaxRetries)
	fmt.Printf("  timeout:     %s\n", cfg.Scrapers.Timeout)
	fmt.Printf("  robots:      %v\n", cfg.Scrapers.RespectRobots)
	fmt.Printf("  parallel:    %v\n", cfg.Scrapers.Parallel)
	fmt.Println("scheduler:")
	fmt.Printf("  interval:    %s\n", cfg.Scheduler.Interval)
	fmt.Println("notification:")
	fmt.Printf("  email:       enabled=%v sender=%s recipients=%d\n",
		cfg.Notification.Email.Enabled, cfg.Notification.Email.Sender, len(cfg.Notification.Email.Recipients))
	fmt.Printf("  telegram:    enabled=%v\n", cfg.Notification.Telegram.Enabled)
	fmt.Println("storage:")
	fmt.Printf("  db_path:     %s\n", cfg.Storage.DBPath)
	fmt.Println("export:")
	fmt.Printf("  csv:         enabled=%v path=%s\n", cfg.Export.CSVEnabled, cfg.Export.CSVPath)
	return nil
}
