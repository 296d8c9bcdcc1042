// Command devtoken prints a bearer token for a user, signed with the
// configured JWT secret. It is meant for local runs against DynamoDB Local.
package main

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"plant-backend/infrastructure/config"
	"plant-backend/infrastructure/di"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: devtoken <google-id> [email]")
		os.Exit(2)
	}
	userID := os.Args[1]
	email := ""
	if len(os.Args) > 2 {
		email = os.Args[2]
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	validator, err := di.ProvideJWTValidator(cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to create token validator: %v", err)
	}
	if validator == nil {
		log.Fatal("JWT_SECRET is not set, bearer tokens are disabled")
	}

	token, err := validator.GenerateToken(userID, email)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
