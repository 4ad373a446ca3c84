// Command tokengen prints a signed bearer token for local testing, standing
// in for the identity provider.
//
//	go run ./cmd/tokengen -user <uuid> -tenant <uuid> -role admin
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/auth"
	"github.com/lalith-99/staffhub/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	user := flag.String("user", "", "employee id (uuid)")
	tenant := flag.String("tenant", "", "tenant id (uuid)")
	email := flag.String("email", "", "employee email")
	role := flag.String("role", "employee", "employee role")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	userID, err := uuid.Parse(*user)
	if err != nil {
		return fmt.Errorf("invalid -user: %w", err)
	}
	tenantID, err := uuid.Parse(*tenant)
	if err != nil {
		return fmt.Errorf("invalid -tenant: %w", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	token, err := auth.GenerateToken(auth.Identity{
		UserID:   userID,
		TenantID: tenantID,
		Email:    *email,
		Role:     *role,
	}, cfg.JWTSecret, *ttl)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
