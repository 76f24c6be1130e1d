package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobradar/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Append pending listings to the CSV export",
	Long:  "Writes the unnotified listings to the CSV file configured under export.csv_path (or --out).",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: export.csv_path from config)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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
		fmt.Println("no pending listings to export")
		return nil
	}

	path := exportOut
	if path == "" {
		path = cfg.Export.CSVPath
	}
	exporter := export.NewCSVExporter(path)
	if err := exporter.Append(listings); err != nil {
		logger.Error("export failed", "path", path, "error", err)
		os.Exit(1)
	}

	fmt.Printf("exported %d listing(s) to %s\n", len(listings), path)
	return nil
}
