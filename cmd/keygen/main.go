package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rs/zerolog"

	"github.com/ksred/ironforge/internal/api"
	"github.com/ksred/ironforge/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file, used for the JWT secret")
		subject    = flag.String("token", "", "Also issue a JWT for this subject")
	)
	flag.Parse()

	fmt.Println("Generating admin API key...")

	key, hash, err := api.GenerateAPIKey()
	if err != nil {
		log.Fatalf("Failed to generate API key: %v", err)
	}

	fmt.Println("\nGenerated API key (send as the X-API-Key header):")
	fmt.Println(key)
	fmt.Println("\nAdd the hash to your .env file or environment variables as:")
	fmt.Printf("IRONFORGE_AUTH_API_KEY_HASH='%s'\n", hash)

	if *subject == "" {
		fmt.Println("\nIMPORTANT: The key is shown once. Only the hash is stored.")
		return
	}

	cfg := config.LoadConfigOrDefault(*configPath)
	token, expiresAt, err := api.NewAuthService(cfg, zerolog.New(os.Stderr)).IssueToken(*subject)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Printf("\nJWT for %s (expires %s):\n", *subject, expiresAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Println(token)
	fmt.Println("\nIMPORTANT: The key is shown once. Only the hash is stored.")
}
