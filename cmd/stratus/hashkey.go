package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"stratus-gw/stratus/pkg/security/keys"
)

var hashKeyFlags struct {
	secret string
}

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key",
	Short: "Hash an API key secret for the config file",
	Long: `Compute the SHA-256 digest of an API key secret, in the form the
auth.keys key_hash field expects. The secret is read from stdin unless
--secret is given; prefer stdin so the secret stays out of shell history.

Examples:
  # Read the secret from stdin
  stratus hash-key < secret.txt

  # Pass the secret on the command line
  stratus hash-key --secret "s3cret"`,
	RunE: hashKey,
}

func init() {
	rootCmd.AddCommand(hashKeyCmd)

	hashKeyCmd.Flags().StringVar(&hashKeyFlags.secret, "secret", "", "secret to hash (reads stdin if omitted)")
}

func hashKey(cmd *cobra.Command, args []string) error {
	secret := hashKeyFlags.secret
	if secret == "" {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read secret from stdin: %w", err)
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	if secret == "" {
		return fmt.Errorf("empty secret")
	}

	fmt.Println(keys.HashSecret(secret))
	return nil
}
