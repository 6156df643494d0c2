// Package main issues control tokens for the screen API.
//
//	token -subject kiosk-lobby -scopes screen:control,device:report -ttl 720h
//
// The signing key, issuer and audience come from the same environment (or
// .env) as the API server.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/nimbusview/nimbus/internal/auth"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	subject := flag.String("subject", "", "token subject, e.g. the kiosk or operator name")
	scopes := flag.String("scopes", auth.ScopeControl, "comma-separated scopes")
	ttl := flag.Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	if *subject == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load() //nolint:errcheck // .env is optional

	secret := os.Getenv("CONTROL_JWT_SECRET")
	if secret == "" {
		log.Fatal().Msg("CONTROL_JWT_SECRET is not set")
	}

	granted, err := parseScopes(*scopes)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scopes")
	}

	tokens := auth.NewTokenService(auth.Config{
		SigningKey: secret,
		Issuer:     os.Getenv("CONTROL_JWT_ISSUER"),
		Audience:   os.Getenv("CONTROL_JWT_AUDIENCE"),
	})

	token, expiresAt, err := tokens.Issue(*subject, granted, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to issue token")
	}

	log.Info().
		Str("subject", *subject).
		Strs("scopes", granted).
		Time("expires_at", expiresAt.UTC().Truncate(time.Second)).
		Msg("token issued")
	fmt.Println(token)
}

func parseScopes(raw string) ([]string, error) {
	known := map[string]bool{
		auth.ScopeControl:     true,
		auth.ScopeDevice:      true,
		auth.ScopeDiagnostics: true,
	}

	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !known[s] {
			return nil, fmt.Errorf("unknown scope %q", s)
		}
		scopes = append(scopes, s)
	}
	if len(scopes) == 0 {
		return nil, fmt.Errorf("at least one scope is required")
	}
	return scopes, nil
}
