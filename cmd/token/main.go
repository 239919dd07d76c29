// Command token issues a staff bearer token for the parking API.
//
//	go run ./cmd/token -actor 6f1c1b7e-8a51-4c7a-9a6e-0c4f3f2d9b10 -ttl 12h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/parking-lot/internal/auth"
	"github.com/Shivanand-hulikatti/parking-lot/internal/config"
)

func main() {
	secret := os.Getenv("PARKING_SECRET_KEY")
	if secret == "" {
		secret = config.DevSecretKey
	}

	actor := flag.String("actor", "", "actor UUID (random when empty)")
	key := flag.String("secret", secret, "HS256 signing key")
	ttl := flag.Duration("ttl", 8*time.Hour, "token lifetime")
	flag.Parse()

	if *actor == "" {
		*actor = uuid.NewString()
	}
	token, err := auth.GenerateToken(*actor, []byte(*key), *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}
	fmt.Printf("actor: %s\ntoken: %s\n", *actor, token)
}
