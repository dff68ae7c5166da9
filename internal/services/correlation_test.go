package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimateCorrelations_Bands(t *testing.T) {
	h := NewHeuristicCorrelation(42)

	pairs := h.EstimateCorrelations([]string{"USDC", "USDT", "XLM", "AQUA"}, "XLM")
	require.Len(t, pairs, 6)

	byPair := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		byPair[p.Asset1+"/"+p.Asset2] = p.Correlation
	}

	// Stable/stable pairs are tightly coupled
	usdcUsdt := byPair["USDC/USDT"]
	require.GreaterOrEqual(t, usdcUsdt, 0.7)
	require.LessOrEqual(t, usdcUsdt, 0.9)

	// Pairs involving the native asset get the middle band
	aquaXlm := byPair["AQUA/XLM"]
	require.GreaterOrEqual(t, aquaXlm, 0.3)
	require.LessOrEqual(t, aquaXlm, 0.6)

	// Everything else sits low
	aquaUsdc := byPair["AQUA/USDC"]
	require.GreaterOrEqual(t, aquaUsdc, 0.1)
	require.LessOrEqual(t, aquaUsdc, 0.5)
}

func TestEstimateCorrelations_FewerThanTwoAssets(t *testing.T) {
	h := NewHeuristicCorrelation(1)

	require.Empty(t, h.EstimateCorrelations(nil, "XLM"))
	require.Empty(t, h.EstimateCorrelations([]string{"USDC"}, "XLM"))
	// Duplicates and blanks collapse to a single asset
	require.Empty(t, h.EstimateCorrelations([]string{"USDC", "usdc", " ", ""}, "XLM"))
}

func TestEstimateCorrelations_ValuesRoundedAndBounded(t *testing.T) {
	h := NewHeuristicCorrelation(7)

	pairs := h.EstimateCorrelations([]string{"XLM", "AQUA", "USDC", "yXLM", "SHX"}, "XLM")
	require.Len(t, pairs, 10)

	for _, p := range pairs {
		require.GreaterOrEqual(t, p.Correlation, 0.0)
		require.LessOrEqual(t, p.Correlation, 1.0)
		// Two decimal places
		rounded := float64(int(p.Correlation*100+0.5)) / 100
		require.InDelta(t, rounded, p.Correlation, 1e-9)
	}
}

func TestEstimateCorrelations_PairOrderIsStable(t *testing.T) {
	h := NewHeuristicCorrelation(3)

	pairs := h.EstimateCorrelations([]string{"XLM", "AQUA", "USDC"}, "XLM")
	require.Len(t, pairs, 3)

	// Assets are sorted, so pair enumeration is deterministic
	require.Equal(t, "AQUA", pairs[0].Asset1)
	require.Equal(t, "USDC", pairs[0].Asset2)
	require.Equal(t, "AQUA", pairs[1].Asset1)
	require.Equal(t, "XLM", pairs[1].Asset2)
	require.Equal(t, "USDC", pairs[2].Asset1)
	require.Equal(t, "XLM", pairs[2].Asset2)
}

func TestEstimateCorrelations_ConcurrentCallers(t *testing.T) {
	h := NewHeuristicCorrelation(11)
	assets := []string{"USDC", "USDT", "XLM", "AQUA"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				pairs := h.EstimateCorrelations(assets, "XLM")
				if len(pairs) != 6 {
					t.Errorf("expected 6 pairs, got %d", len(pairs))
					return
				}
				for _, p := range pairs {
					if p.Correlation < 0 || p.Correlation > 1 {
						t.Errorf("correlation out of range: %f", p.Correlation)
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestIsStableLike(t *testing.T) {
	require.True(t, isStableLike("USDC"))
	require.True(t, isStableLike("usdt"))
	require.True(t, isStableLike("xUSD"))
	require.False(t, isStableLike("XLM"))
	require.False(t, isStableLike("AQUA"))
}
