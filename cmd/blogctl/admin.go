package main

import (
	"errors"
	"fmt"
	"strings"

	"finsight/pkg/database"
	"finsight/pkg/models"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

var (
	adminEmail       string
	adminPassword    string
	adminDisplayName string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin writer accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin writer account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := newAdminUser(adminEmail, adminPassword, adminDisplayName)
		if err != nil {
			return err
		}

		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := db.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("an admin with email %s already exists", user.Email)
			}
			return fmt.Errorf("failed to create admin: %w", err)
		}

		log.Info("Created admin %s (id=%s)", user.Email, user.ID)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "login password")
	adminCreateCmd.Flags().StringVar(&adminDisplayName, "name", "", "display name")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")
	adminCmd.AddCommand(adminCreateCmd)
}

func newAdminUser(email, password, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	return &models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		IsActive:     true,
	}, nil
}
