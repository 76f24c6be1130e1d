// Package secrets stores the SMTP password in the OS keychain so it never
// lives in the config file.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this tool's secrets in the OS keychain.
const KeyringService = "jobradar"

// SMTPAccount derives the keychain account name from the sender address and
// SMTP host, so switching providers keeps passwords separate.
func SMTPAccount(sender, smtpHost string) string {
	return fmt.Sprintf("jobradar:smtp:%s@%s", sender, smtpHost)
}

// GetSMTPPassword resolves the SMTP password: keychain first, then the
// JOBRADAR_SMTP_PASSWORD environment variable as a fallback for headless
// hosts without a keyring daemon.
func GetSMTPPassword(account string) (string, error) {
	if strings.TrimSpace(account) != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}

	if pw := os.Getenv("JOBRADAR_SMTP_PASSWORD"); strings.TrimSpace(pw) != "" {
		return pw, nil
	}

	return "", errors.New("SMTP password not found (set it in the keychain or via JOBRADAR_SMTP_PASSWORD)")
}

// SetSMTPPassword stores the password in the keychain.
func SetSMTPPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

// DeleteSMTPPassword removes the password from the keychain.
func DeleteSMTPPassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
