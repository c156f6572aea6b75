// Command tokengen mints an access token for local testing against the API.
//
//	go run ./cmd/tokengen -user staff-1
//	go run ./cmd/tokengen -user portal-7 -role student -student <student uuid>
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"visa-consultancy/backend/config"
	"visa-consultancy/backend/pkg/jwt"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	userID := flag.String("user", "", "actor id written into the token")
	role := flag.String("role", jwt.RoleStaff, "staff or student")
	studentID := flag.String("student", "", "student id a student token is scoped to")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		os.Exit(2)
	}
	if *role != jwt.RoleStaff && *role != jwt.RoleStudent {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}
	if *role == jwt.RoleStudent && *studentID == "" {
		fmt.Fprintln(os.Stderr, "-student is required for student tokens")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(*userID, *role, *studentID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
