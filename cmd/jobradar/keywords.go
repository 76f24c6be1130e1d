package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Manage persisted search keywords",
	Long:  "Keywords added here are merged with the config file's keywords on every run.",
}

var keywordsAddCmd = &cobra.Command{
	Use:   "add <keyword>",
	Short: "Add a keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeywordsAdd,
}

var keywordsRemoveCmd = &cobra.Command{
	Use:   "remove <keyword>",
	Short: "Remove a keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeywordsRemove,
}

var keywordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted keywords",
	RunE:  runKeywordsList,
}

func init() {
	keywordsCmd.AddCommand(keywordsAddCmd, keywordsRemoveCmd, keywordsListCmd)
	rootCmd.AddCommand(keywordsCmd)
}

func runKeywordsAdd(cmd *cobra.Command, args []string) error {
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

	kw := strings.TrimSpace(args[0])
	if err := s.AddKeyword(kw); err != nil {
		logger.Error("failed to add keyword", "keyword", kw, "error", err)
		os.Exit(1)
	}
	fmt.Printf("added keyword %q\n", kw)
	return nil
}

func runKeywordsRemove(cmd *cobra.Command, args []string) error {
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

	kw := strings.TrimSpace(args[0])
	if err := s.RemoveKeyword(kw); err != nil {
		logger.Error("failed to remove keyword", "keyword", kw, "error", err)
		os.Exit(1)
	}
	fmt.Printf("removed keyword %q\n", kw)
	return nil
}

func runKeywordsList(cmd *cobra.Command, args []string) error {
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

	stored, err := s.ListKeywords()
	if err != nil {
		logger.Error("failed to list keywords", "error", err)
		os.Exit(1)
	}

	if len(stored) == 0 {
		fmt.Println("no persisted keywords; using config keywords only")
		return nil
	}
	for _, kw := range stored {
		fmt.Println(kw)
	}
	return nil
}
