// Command seed populates a local database with demo vaults, ledger entries
// and value snapshots so the analytics API has data to serve during
// development.
package main

import (
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lumenvault/backend/internal/db"
	"github.com/lumenvault/backend/internal/logger"
	"github.com/lumenvault/backend/internal/models"
)

const demoOwner = "GDEMO4Q3YKNTJCGPV3DTKDDFQ3BSTVSZ5CGEWNY3DABSVJXMABCDEMO"

func main() {
	_ = godotenv.Load()

	zapLogger, err := logger.New()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLogger.Sync()

	database, err := db.Connect(db.NewConfig())
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&models.Vault{},
		&models.VaultAllocation{},
		&models.VaultTransaction{},
		&models.ValueSnapshot{},
	); err != nil {
		zapLogger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC().Truncate(time.Hour)

	seedVault(zapLogger, database, rng, now, "USDC Yield Vault", "USDC",
		"CCW67TSZV3SSS2HXMBQ5JFGCKJNXKZM7UQUWUZPUTHXSTZLEO7SJMI75", 10000, 0.08)
	seedVault(zapLogger, database, rng, now, "XLM Growth Vault", "XLM",
		"CB64D3G7SM2RTH6JSGG34DDTFTQ5CFDKVDZJZSODMCX4NJ2HV2KN7OHT", 4000, 0.22)

	zapLogger.Info("Demo data seeded", zap.String("owner", demoOwner))
}

// seedVault creates one vault with a funding deposit and thirty days of
// hourly snapshots drifting toward the target annual return.
func seedVault(zapLogger *zap.Logger, database *db.DB, rng *rand.Rand, now time.Time, name, assetCode, assetContract string, principal float64, annualReturn float64) {
	vault := &models.Vault{
		ID:            uuid.NewString(),
		Name:          name,
		Owner:         demoOwner,
		Status:        models.VaultStatusActive,
		Network:       models.DefaultNetwork,
		AssetCode:     assetCode,
		AssetContract: assetContract,
		TotalShares:   decimal.NewFromFloat(principal),
	}
	if err := vault.Validate(); err != nil {
		zapLogger.Fatal("Invalid demo vault", zap.Error(err))
	}
	if err := database.Create(vault).Error; err != nil {
		zapLogger.Fatal("Failed to create demo vault", zap.Error(err))
	}

	start := now.AddDate(0, 0, -30)
	deposit := &models.VaultTransaction{
		ID:        uuid.NewString(),
		VaultID:   vault.ID,
		Type:      models.VaultTxTypeDeposit,
		AmountUSD: decimal.NewFromFloat(principal),
		Timestamp: start,
	}
	if err := database.Create(deposit).Error; err != nil {
		zapLogger.Fatal("Failed to create demo deposit", zap.Error(err))
	}

	hourlyGrowth := annualReturn / (365 * 24)
	value := principal
	for at := start.Add(time.Hour); !at.After(now); at = at.Add(time.Hour) {
		value *= 1 + hourlyGrowth + (rng.Float64()-0.5)*0.002
		snap := &models.ValueSnapshot{
			ID:            uuid.NewString(),
			VaultID:       vault.ID,
			TotalValueUSD: decimal.NewFromFloat(value),
			Timestamp:     at,
		}
		if err := database.Create(snap).Error; err != nil {
			zapLogger.Fatal("Failed to create demo snapshot", zap.Error(err))
		}
	}

	zapLogger.Info("Seeded vault",
		zap.String("vault_id", vault.ID),
		zap.String("name", name),
		zap.Float64("final_value", value))
}
