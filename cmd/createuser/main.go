// Package main provisions an account from the command line. Accounts created
// without -password get a temporary password and must change it after signing in.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"contentdesk/internal/auth"
	"contentdesk/internal/config"
	"contentdesk/internal/database"
	"contentdesk/internal/models"
	"contentdesk/internal/repository/postgres"

	"github.com/joho/godotenv"
)

func main() {
	envFile := flag.String("env", ".env", "Path to env file")
	emailAddr := flag.String("email", "", "Email address of the new account")
	role := flag.String("role", models.RoleEditor, "Role: admin or editor")
	password := flag.String("password", "", "Initial password; a temporary one is generated when empty")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && *envFile != ".env" {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	cfg := &config.Config{}
	if err := cfg.LoadFromEnv(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	user, temp, err := createUser(context.Background(), cfg, *emailAddr, *role, *password)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Fprintf(os.Stdout, "created %s (%s) id=%s\n", user.Email, user.Role, user.ID)
	if temp != "" {
		fmt.Fprintf(os.Stdout, "temporary password: %s\n", temp)
	}
}

func createUser(ctx context.Context, cfg *config.Config, emailAddr, role, password string) (*models.User, string, error) {
	if emailAddr == "" {
		return nil, "", fmt.Errorf("-email is required")
	}
	if role != models.RoleAdmin && role != models.RoleEditor {
		return nil, "", fmt.Errorf("unknown role %q", role)
	}

	temp := ""
	if password == "" {
		generated, err := temporaryPassword()
		if err != nil {
			return nil, "", err
		}
		password, temp = generated, generated
	}
	if violations := auth.ValidatePassword(password); len(violations) > 0 {
		return nil, "", fmt.Errorf("password rejected: %s", strings.Join(violations, ", "))
	}

	hash, err := auth.NewPasswordHasher(cfg.Auth.BcryptCost).HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	db, err := database.SetupDatabase(cfg.Database)
	if err != nil {
		return nil, "", err
	}
	defer db.Close()

	user := &models.User{
		Email:              emailAddr,
		PasswordHash:       hash,
		Role:               role,
		MustChangePassword: temp != "",
	}
	if err := postgres.NewUserRepository(db).Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}
	return user, temp, nil
}

// temporaryPassword satisfies every password rule
func temporaryPassword() (string, error) {
	id, err := auth.NewSessionID()
	if err != nil {
		return "", err
	}
	return "Tmp-" + id[:16] + "9x", nil
}
