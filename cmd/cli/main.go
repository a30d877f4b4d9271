package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/config"
	"github.com/iho/walletledger/internal/infrastructure/logger"
	"github.com/iho/walletledger/internal/infrastructure/postgres"
)

var (
	baseURL  string
	apiToken string
	timeout  time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "walletledger-cli",
		Short:         "Wallet ledger CLI tool",
		Long:          `A command line interface for operating the wallet ledger service and its database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the wallet ledger API")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("WALLETLEDGER_TOKEN"), "Bearer token for the API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(reconcileCmd(), walletCmd(), migrateCmd(), tokenCmd())
	return rootCmd
}

// Ledger commands

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [user-id]",
		Short: "Recompute balances from entries and report drift",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/ledger/reconciliation"
			if len(args) == 1 {
				path += "/" + url.PathEscape(args[0])
			}

			status, body, err := apiGet(path)
			if err != nil {
				return err
			}

			switch status {
			case http.StatusOK:
				fmt.Fprintln(cmd.OutOrStdout(), "Reconciliation PASSED")
			case http.StatusConflict:
				fmt.Fprintln(cmd.OutOrStdout(), "Reconciliation FAILED")
			default:
				return fmt.Errorf("reconciliation request failed (status %d): %s", status, body)
			}

			if err := printJSON(cmd.OutOrStdout(), body); err != nil {
				return err
			}
			if status == http.StatusConflict {
				return errors.New("ledger has discrepancies")
			}
			return nil
		},
	}
}

func walletCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wallet <user-id>",
		Short: "Show the wallet of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := apiGet("/api/v1/wallets/" + url.PathEscape(args[0]))
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("wallet request failed (status %d): %s", status, body)
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
}

// Database commands

func migrateCmd() *cobra.Command {
	var databaseURL string

	resolveURL := func() (string, error) {
		if databaseURL != "" {
			return databaseURL, nil
		}
		cfg, err := config.Load()
		if err != nil {
			return "", err
		}
		return cfg.DatabaseURL, nil
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL (defaults to DATABASE_URL)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				dsn, err := resolveURL()
				if err != nil {
					return err
				}
				return postgres.RunMigrations(dsn, logger.New(logger.Config{Format: "console", Output: cmd.ErrOrStderr()}))
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				dsn, err := resolveURL()
				if err != nil {
					return err
				}
				return postgres.RunMigrationsDown(dsn, logger.New(logger.Config{Format: "console", Output: cmd.ErrOrStderr()}))
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				dsn, err := resolveURL()
				if err != nil {
					return err
				}
				version, dirty, err := postgres.MigrationVersion(dsn)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %v\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}

// Auth commands

func tokenCmd() *cobra.Command {
	var (
		secret string
		role   string
		name   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token for a user or service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a signing secret is required (--secret or JWT_SECRET)")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(&domain.User{
				ID:   args[0],
				Name: name,
				Role: domain.Role(role),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC signing secret")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleMember), "Role: member, operator or admin")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func apiGet(path string) (int, []byte, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}
	if apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+apiToken)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("error reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func printJSON(w io.Writer, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
