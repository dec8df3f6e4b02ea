package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

// Mints a bearer token for POST /v1/admin/revalidate, e.g. for the CMS
// publish webhook:
//
//	go run scripts/gentoken.go -sub sanity-webhook -ttl 8760h
func main() {
	subject := flag.String("sub", "cms-webhook", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("REVALIDATE_JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "REVALIDATE_JWT_SECRET is not set")
		os.Exit(1)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   *subject,
		"scope": "revalidate",
		"iat":   now.Unix(),
		"exp":   now.Add(*ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Printf("Subject: %s\nExpires: %s\nToken: %s\n", *subject, now.Add(*ttl).Format(time.RFC3339), token)
}
