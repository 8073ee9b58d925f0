package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HanTheDev/review-reply-gateway/internal/auth"
	"github.com/HanTheDev/review-reply-gateway/internal/db"
	"github.com/HanTheDev/review-reply-gateway/internal/logger"
	"github.com/HanTheDev/review-reply-gateway/internal/models"
	"github.com/HanTheDev/review-reply-gateway/internal/quota"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			database, err := db.NewDB(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer database.Close()

			if err := database.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Log.Info("schema applied")
			return nil
		},
	}
}

func parseRole(s string) (models.Role, error) {
	switch r := models.Role(s); r {
	case models.RoleSuperAdmin, models.RoleSubAdmin, models.RoleCustomer:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q (want super_admin, sub_admin or customer)", s)
}

func newTokenCmd() *cobra.Command {
	var (
		userID     string
		username   string
		role       string
		createUser bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRole(role)
			if err != nil {
				return err
			}
			if username == "" {
				username = userID
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if createUser {
				if cfg.DatabaseURL == "" {
					return errors.New("DATABASE_URL is required with --create-user")
				}
				database, err := db.NewDB(cmd.Context(), cfg.DatabaseURL)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer database.Close()

				if err := database.EnsureUser(cmd.Context(), userID, username, r); err != nil {
					return fmt.Errorf("create user: %w", err)
				}
			}

			token, err := auth.GenerateToken(userID, username, r, cfg.JWTSecret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "user id placed in the token")
	cmd.Flags().StringVar(&username, "username", "", "display name (defaults to the user id)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleCustomer), "super_admin, sub_admin or customer")
	cmd.Flags().BoolVar(&createUser, "create-user", false, "upsert the user row before issuing the token")
	cmd.MarkFlagRequired("user-id")
	return cmd
}

func newQuotaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Manage usage quotas",
	}
	cmd.AddCommand(newQuotaInitCmd())
	return cmd
}

func newQuotaInitCmd() *cobra.Command {
	var (
		userID string
		limits models.QuotaLimits
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a quota row for a user (existing rows are kept)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			database, err := db.NewDB(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer database.Close()

			if err := quota.NewService(database).Init(cmd.Context(), userID, limits); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "quota ready for %s\n", userID)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "user to initialize")
	cmd.Flags().IntVar(&limits.DailyLimit, "daily", quota.DefaultDailyLimit, "daily reply limit")
	cmd.Flags().IntVar(&limits.MonthlyReplyLimit, "monthly", quota.DefaultMonthlyReplyLimit, "monthly reply limit")
	cmd.Flags().IntVar(&limits.MonthlyTokenLimit, "tokens", quota.DefaultMonthlyTokenLimit, "monthly token limit")
	cmd.MarkFlagRequired("user-id")
	return cmd
}
