package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/stemsi/edulink/internal/config"
	"github.com/stemsi/edulink/internal/logger"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/service"
)

// Mints an operator token signed with JWT_SECRET for local testing. Production tokens
// come from the platform's auth service.
func main() {
	var (
		operatorID  string
		schools     string
		permissions string
	)
	flag.StringVar(&operatorID, "operator", "", "Operator ID (default: random UUID)")
	flag.StringVar(&schools, "schools", model.AllSchools, "Comma-separated school IDs, or * for all")
	flag.StringVar(&permissions, "permissions", "", "Comma-separated permission codes (default: all)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if operatorID == "" {
		operatorID = uuid.NewString()
	}

	perms := splitList(permissions)
	if len(perms) == 0 {
		for _, p := range model.AllPermissions {
			perms = append(perms, string(p))
		}
	}
	for _, p := range perms {
		if !known(p) {
			log.Fatal().Str("permission", p).Msg("Unknown permission code")
		}
	}

	token, err := service.NewAuthService(cfg).GenerateOperatorToken(operatorID, splitList(schools), perms)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}

	fmt.Fprintf(os.Stderr, "operator=%s schools=%s expires_in=%s\n", operatorID, schools, cfg.JWTExpiry)
	fmt.Println(token)
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func known(code string) bool {
	for _, p := range model.AllPermissions {
		if string(p) == code {
			return true
		}
	}
	return false
}
