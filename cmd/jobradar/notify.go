package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"jobradar/internal/model"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends one synthetic listing through the configured channels to verify credentials and connectivity.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	d := buildDispatcher(cfg, logger)

	probe := []model.Listing{{
		Title:      "Test Listing",
		Company:    "JobRadar",
		Location:   "Remote",
		URL:        "https://example.com/test",
		Source:     "notify-test",
		Score:      100,
		Discovered: time.Now().UTC(),
	}}

	if !d.Deliver(context.Background(), probe, false) {
		logger.Error("test notification failed")
		os.Exit(1)
	}
	logger.Info("test notification sent successfully")
	return nil
}
