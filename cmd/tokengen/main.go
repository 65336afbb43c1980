// Command tokengen mints a system token for local testing.
//
//	tokengen -system 42 -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/systemhub/member-api/internal/auth"
	"github.com/systemhub/member-api/internal/config"
)

func main() {
	systemID := flag.Int("system", 0, "internal id of the system the token acts as")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	flag.Parse()

	if *systemID <= 0 {
		fmt.Fprintln(os.Stderr, "tokengen: -system must be a positive system id")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}

	token, err := auth.NewAuthenticator(cfg.Auth.JWTSecret).Issue(*systemID, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
