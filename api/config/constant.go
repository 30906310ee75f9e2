package config

import (
	"log"
	"strings"
	"time"
)

const (
	// ProdDbId is the identifier for the production database
	ProdDbId = "old-cloud"

	// DefaultCatalogFile is read when PRICE_CATALOG_FILE is unset.
	DefaultCatalogFile = "config/catalog.yaml"

	// DefaultGiftTrialTTL bounds how long an unclaimed gift trial is held.
	DefaultGiftTrialTTL = 6 * time.Hour

	// DefaultStripeRateLimit stays under the provider's live-mode read/write limit.
	DefaultStripeRateLimit = 25.0

	// Currency is the single billing currency.
	Currency = "usd"
)

// CheckNotProdDB aborts immediately if the configured database URL contains ProdDbId.
// This should be called at the start of any test that interacts with the database.
func CheckNotProdDB() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DatabaseURL is not configured")
	}
	if strings.Contains(cfg.DatabaseURL, ProdDbId) {
		log.Fatalf("Tests aborted: DatabaseURL contains production identifier %s", ProdDbId)
	}
}
