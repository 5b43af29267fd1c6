package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/develper21/MeterBeacon/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Credential management commands",
	Long:  `Issue device tokens and API keys without going through the HTTP API.`,
}

var deviceTokenCmd = &cobra.Command{
	Use:   "device [device-id]",
	Short: "Issue a device token",
	Long:  `Issue a signed device token for provisioning field hardware. The token is valid for 30 days by default.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		issuer := tokenIssuer()

		token, err := issuer.IssueDeviceToken(args[0])
		if err != nil {
			log.Fatalf("failed to issue device token: %v", err)
		}
		fmt.Println(token)
	},
}

var apiKeyPermissions string

var apiKeyCmd = &cobra.Command{
	Use:   "apikey [user-id]",
	Short: "Issue an API key",
	Long:  `Issue a signed API key carrying a fixed permission snapshot. The key is valid for 365 days by default.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		issuer := tokenIssuer()

		var perms []auth.Permission
		for _, p := range strings.Split(apiKeyPermissions, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				perms = append(perms, auth.Permission(p))
			}
		}
		if len(perms) == 0 {
			log.Fatal("at least one permission is required, e.g. --permissions view_dashboard")
		}

		key, err := issuer.IssueAPIKey(args[0], perms)
		if err != nil {
			log.Fatalf("failed to issue api key: %v", err)
		}
		fmt.Println(key)
	},
}

func tokenIssuer() *auth.Issuer {
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return auth.NewIssuer(
		cfg.Security.JWTSecret,
		cfg.Security.SessionTokenTTL,
		cfg.Security.DeviceTTL(),
		cfg.Security.APIKeyLifetime(),
	)
}

func init() {
	apiKeyCmd.Flags().StringVar(&apiKeyPermissions, "permissions", "", "Comma separated permission list to embed in the key")

	tokenCmd.AddCommand(deviceTokenCmd)
	tokenCmd.AddCommand(apiKeyCmd)

	rootCmd.AddCommand(tokenCmd)
}
