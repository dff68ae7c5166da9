package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lumenvault/backend/internal/db"
	"github.com/lumenvault/backend/internal/handlers"
	"github.com/lumenvault/backend/internal/logger"
	"github.com/lumenvault/backend/internal/repositories"
	"github.com/lumenvault/backend/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	zapLogger, err := logger.New()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLogger.Sync()

	config := db.NewConfig()
	database, err := db.Connect(config)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Health(); err != nil {
		zapLogger.Fatal("Database health check failed", zap.Error(err))
	}
	zapLogger.Info("Database connection established")

	// Repositories (the snapshot/ledger accessor)
	vaultRepo := repositories.NewVaultRepository(database.DB)
	txRepo := repositories.NewTransactionRepository(database.DB)
	snapRepo := repositories.NewSnapshotRepository(database.DB)

	// External collaborators
	chainURL := getEnv("CHAIN_INDEXER_URL", "")
	var chain interface {
		services.ChainReader
		services.SymbolLookup
	}
	if chainURL != "" {
		chain = services.NewHTTPChainClient(chainURL)
	} else {
		zapLogger.Warn("CHAIN_INDEXER_URL not set, using mock chain client")
		chain = services.NewMockChainClient()
	}

	assetNames := services.NewAssetNameResolver(chain, zapLogger)

	// Analytics engine
	totals := services.NewTotalsResolver(txRepo, snapRepo, zapLogger)
	apy := services.NewAPYCalculator(txRepo, snapRepo, totals, chain, zapLogger)
	risk := services.NewRiskEngine(snapRepo, zapLogger)
	analytics := services.NewVaultAnalyticsService(vaultRepo, txRepo, snapRepo, apy, totals, risk, chain, zapLogger)
	correlation := services.NewHeuristicCorrelation(time.Now().UnixNano())
	portfolio := services.NewPortfolioAnalyticsService(vaultRepo, snapRepo, analytics, risk, correlation, assetNames, chain, zapLogger)

	vaultHandler := handlers.NewVaultHandler(analytics)
	portfolioHandler := handlers.NewPortfolioHandler(portfolio)

	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": "lumenvault-backend",
		})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/vaults/{id}/analytics", vaultHandler.HandleAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/vaults/{id}/analytics/detailed", vaultHandler.HandleDetailedAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/vaults/{id}/performance", vaultHandler.HandlePerformance).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/{owner}/analytics", portfolioHandler.HandleAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/{owner}/performance", portfolioHandler.HandlePerformance).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/{owner}/allocation", portfolioHandler.HandleAllocation).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/{owner}/breakdown", portfolioHandler.HandleBreakdown).Methods(http.MethodGet)

	port := getEnv("PORT", "8080")
	zapLogger.Info("Starting analytics server", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, corsMiddleware(router)); err != nil {
		zapLogger.Fatal("Server stopped", zap.Error(err))
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
