package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jobradar/internal/secrets"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage credentials in the OS keychain",
}

var secretsSetSMTPCmd = &cobra.Command{
	Use:   "set-smtp-pass",
	Short: "Store the SMTP password in the keychain",
	Long:  "Reads the password from stdin and stores it under the account derived from notification.email in the config.",
	RunE:  runSecretsSetSMTP,
}

var secretsDeleteSMTPCmd = &cobra.Command{
	Use:   "delete-smtp-pass",
	Short: "Remove the SMTP password from the keychain",
	RunE:  runSecretsDeleteSMTP,
}

func init() {
	secretsCmd.AddCommand(secretsSetSMTPCmd, secretsDeleteSMTPCmd)
	rootCmd.AddCommand(secretsCmd)
}

func smtpAccountFromConfig() (string, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	email := cfg.Notification.Email
	if email.Sender == "" || email.SMTPHost == "" {
		return "", fmt.Errorf("notification.email.sender and smtp_host must be set in the config")
	}
	return secrets.SMTPAccount(email.Sender, email.SMTPHost), nil
}

func runSecretsSetSMTP(cmd *cobra.Command, args []string) error {
	account, err := smtpAccountFromConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Fprint(os.Stderr, "SMTP password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintf(os.Stderr, "reading password: %v\n", err)
		os.Exit(1)
	}
	password := strings.TrimRight(line, "\r\n")

	if err := secrets.SetSMTPPassword(account, password); err != nil {
		fmt.Fprintf(os.Stderr, "storing password: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("password stored for %s\n", account)
	return nil
}

func runSecretsDeleteSMTP(cmd *cobra.Command, args []string) error {
	account, err := smtpAccountFromConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := secrets.DeleteSMTPPassword(account); err != nil {
		fmt.Fprintf(os.Stderr, "deleting password: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("password removed for %s\n", account)
	return nil
}
