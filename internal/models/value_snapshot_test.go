package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func snapshotWithValue(value decimal.Decimal) *ValueSnapshot {
	return &ValueSnapshot{
		ID:            "snap_test",
		VaultID:       "vault_test",
		TotalValueUSD: value,
		Timestamp:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestValueSnapshot_IsPlausible(t *testing.T) {
	require.True(t, snapshotWithValue(decimal.NewFromFloat(0.01)).IsPlausible())
	require.True(t, snapshotWithValue(decimal.NewFromInt(999_999_999)).IsPlausible())

	require.False(t, snapshotWithValue(decimal.Zero).IsPlausible())
	require.False(t, snapshotWithValue(decimal.NewFromInt(-50)).IsPlausible())
	require.False(t, snapshotWithValue(decimal.NewFromInt(1_000_000_000)).IsPlausible())
	require.False(t, snapshotWithValue(decimal.NewFromInt(2_000_000_000)).IsPlausible())
}

func TestPlausibleSnapshots_PreservesOrder(t *testing.T) {
	series := []*ValueSnapshot{
		snapshotWithValue(decimal.NewFromInt(100)),
		snapshotWithValue(decimal.NewFromInt(-5)),
		snapshotWithValue(decimal.NewFromInt(105)),
		snapshotWithValue(decimal.NewFromInt(2_000_000_000)),
		snapshotWithValue(decimal.NewFromInt(110)),
	}

	valid := PlausibleSnapshots(series)
	require.Len(t, valid, 3)
	require.True(t, valid[0].TotalValueUSD.Equal(decimal.NewFromInt(100)))
	require.True(t, valid[1].TotalValueUSD.Equal(decimal.NewFromInt(105)))
	require.True(t, valid[2].TotalValueUSD.Equal(decimal.NewFromInt(110)))
}

func TestValueSnapshot_Validate(t *testing.T) {
	snap := snapshotWithValue(decimal.NewFromInt(100))
	require.NoError(t, snap.Validate())

	snap.VaultID = ""
	require.Error(t, snap.Validate())

	snap = snapshotWithValue(decimal.NewFromInt(100))
	snap.Timestamp = time.Time{}
	require.Error(t, snap.Validate())
}
