package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/staynest/booking-backend/internal/utils"
	"github.com/staynest/booking-backend/pkg/jwt"
)

func main() {
	var (
		userID string
		name   string
		email  string
		expiry time.Duration
	)
	flag.StringVar(&userID, "user", "", "mint a development bearer token for this user id")
	flag.StringVar(&name, "name", "Dev User", "display name carried in the token")
	flag.StringVar(&email, "email", "", "email carried in the token")
	flag.DurationVar(&expiry, "expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	if userID == "" {
		secret, err := utils.GenerateAuthSecret()
		if err != nil {
			log.Fatalf("Failed to generate secret: %v", err)
		}

		fmt.Println("Add this to your .env file:")
		fmt.Println()
		fmt.Printf("AUTH_JWT_SECRET=%s\n", secret)
		fmt.Println()
		fmt.Println("Keep it out of version control.")
		return
	}

	// Signing a token needs the secret the server validates with
	_ = godotenv.Load()
	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		log.Fatal("AUTH_JWT_SECRET is not set")
	}
	issuer := os.Getenv("AUTH_ISSUER")
	if issuer == "" {
		issuer = "staynest-identity"
	}
	if email == "" {
		email = userID + "@example.com"
	}

	token, err := jwt.NewService(secret, issuer, expiry).GenerateToken(userID, name, email)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
