package services

import (
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/lumenvault/backend/internal/models"
)

// correlationBand is one heuristic range a pair can be assigned from
type correlationBand struct {
	low, high float64
}

var (
	bandStablePair = correlationBand{0.7, 0.9}
	bandNativePair = correlationBand{0.3, 0.6}
	bandDefault    = correlationBand{0.1, 0.5}
)

// stableAssets are symbols treated as stable-coin-like for band selection
var stableAssets = map[string]bool{
	"USDC": true,
	"USDT": true,
	"DAI":  true,
	"BUSD": true,
	"TUSD": true,
}

// HeuristicCorrelation assigns each unordered asset pair a correlation drawn
// from a category band with random jitter. This is an approximation, not a
// statistical correlation; it satisfies CorrelationStrategy so a
// covariance-based estimator can replace it without touching the engine.
type HeuristicCorrelation struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeuristicCorrelation creates the estimator with its own random source
func NewHeuristicCorrelation(seed int64) *HeuristicCorrelation {
	return &HeuristicCorrelation{rng: rand.New(rand.NewSource(seed))}
}

// EstimateCorrelations returns one estimate per unordered pair of distinct
// assets. Fewer than two distinct assets yields an empty slice.
func (h *HeuristicCorrelation) EstimateCorrelations(assets []string, nativeAsset string) []models.AssetCorrelation {
	distinct := distinctAssets(assets)
	if len(distinct) < 2 {
		return nil
	}

	correlations := make([]models.AssetCorrelation, 0, len(distinct)*(len(distinct)-1)/2)
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			band := classifyPair(distinct[i], distinct[j], nativeAsset)
			correlations = append(correlations, models.AssetCorrelation{
				Asset1:      distinct[i],
				Asset2:      distinct[j],
				Correlation: h.jitter(band),
			})
		}
	}
	return correlations
}

// classifyPair picks the band: stable/stable pairs move together, pairs
// involving the network's native asset sit in the middle, everything else low.
func classifyPair(a, b, nativeAsset string) correlationBand {
	if isStableLike(a) && isStableLike(b) {
		return bandStablePair
	}
	if strings.EqualFold(a, nativeAsset) || strings.EqualFold(b, nativeAsset) {
		return bandNativePair
	}
	return bandDefault
}

func isStableLike(asset string) bool {
	upper := strings.ToUpper(asset)
	return stableAssets[upper] || strings.Contains(upper, "USD")
}

// jitter draws uniformly inside the band, rounded to 2 decimals. The mutex
// keeps the shared source safe across concurrent portfolio requests.
func (h *HeuristicCorrelation) jitter(band correlationBand) float64 {
	h.mu.Lock()
	v := band.low + h.rng.Float64()*(band.high-band.low)
	h.mu.Unlock()
	return math.Round(v*100) / 100
}

// distinctAssets drops blanks and duplicates, preserving a stable order
func distinctAssets(assets []string) []string {
	seen := make(map[string]bool)
	distinct := make([]string, 0, len(assets))
	for _, a := range assets {
		trimmed := strings.TrimSpace(a)
		if trimmed == "" {
			continue
		}
		key := strings.ToUpper(trimmed)
		if !seen[key] {
			seen[key] = true
			distinct = append(distinct, trimmed)
		}
	}
	sort.Strings(distinct)
	return distinct
}
