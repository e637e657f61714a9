// Command token-init mints a bearer token for one owner using JWT_SECRET.
//
//	token-init -owner 6f1c... [-ttl 720h]
//
// Pass -new to generate a fresh owner id.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/middleware/auth"
)

func main() {
	ownerFlag := flag.String("owner", "", "owner id (uuid)")
	newOwner := flag.Bool("new", false, "generate a new owner id")
	ttl := flag.Duration("ttl", 0, "token lifetime (default TOKEN_TTL)")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := config.Load()
	if *ttl > 0 {
		cfg.TokenTTL = *ttl
	}
	if err := cfg.ValidateAuth(); err != nil {
		log.Fatalf("%v", err)
	}

	var owner uuid.UUID
	switch {
	case *newOwner:
		owner = uuid.New()
	case *ownerFlag != "":
		id, err := uuid.Parse(*ownerFlag)
		if err != nil {
			log.Fatalf("invalid -owner: %v", err)
		}
		owner = id
	default:
		flag.Usage()
		os.Exit(2)
	}

	now := time.Now()
	token, err := auth.IssueToken(cfg.JWTSecret, cfg.JWTIssuer, owner, cfg.TokenTTL, now)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "owner:   %s\nexpires: %s\n", owner, now.Add(cfg.TokenTTL).UTC().Format(time.RFC3339))
	fmt.Println(token)
}
