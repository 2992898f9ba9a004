// Command mkcode provisions single-use registration access codes. It is the
// out-of-band admin tool referenced by the registration flow; the service
// itself never creates codes.
//
// Usage:
//
//	mkcode -n 5 -expires 720h
//	mkcode -code EARLY-ACCESS-2026
//	mkcode -seed-role ROLE_USER
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parkingapp/auth-service/internal/core/domain"
	"github.com/parkingapp/auth-service/internal/infrastructure/config"
	mongostore "github.com/parkingapp/auth-service/internal/infrastructure/db/mongo"
)

func main() {
	var (
		count    = flag.Int("n", 1, "number of codes to generate")
		code     = flag.String("code", "", "provision this exact code instead of generating one")
		expires  = flag.Duration("expires", 0, "code lifetime (0 = never expires)")
		seedRole = flag.String("seed-role", "", "upsert this role and exit")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		exitf("load config: %v", err)
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		exitf("connect mongodb: %v", err)
	}
	defer client.Disconnect(context.Background())

	store := mongostore.NewCredentialStore(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		exitf("ensure indexes: %v", err)
	}

	if *seedRole != "" {
		if err := store.EnsureRole(ctx, *seedRole); err != nil {
			exitf("seed role: %v", err)
		}
		fmt.Printf("role %s ready\n", *seedRole)
		return
	}

	var expiresAt *time.Time
	if *expires > 0 {
		t := time.Now().UTC().Add(*expires)
		expiresAt = &t
	}

	codes := make([]string, 0, *count)
	if *code != "" {
		codes = append(codes, *code)
	} else {
		for i := 0; i < *count; i++ {
			codes = append(codes, generateCode())
		}
	}

	for _, c := range codes {
		record := &domain.AccessCode{
			Code:      c,
			Used:      false,
			ExpiresAt: expiresAt,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.SaveAccessCode(ctx, record); err != nil {
			exitf("save code %s: %v", c, err)
		}
		fmt.Println(c)
	}
}

// generateCode returns a short uppercase code like 7F3A-29C1-8B04.
func generateCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("%s-%s-%s", raw[0:4], raw[4:8], raw[8:12])
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "mkcode: "+format+"\n", args...)
	os.Exit(1)
}
