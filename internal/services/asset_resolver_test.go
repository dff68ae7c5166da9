package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const unknownContract = "CAXH3TJZPAHHAVVRXZSMPPYAMWMQYI6QJX2RTTWGHZCLEVDKXJUSAQUA"

func TestResolveSymbol_Allowlist(t *testing.T) {
	lookup := &fakeLookup{}
	r := NewAssetNameResolverWithClock(lookup, testLogger(), func() time.Time { return testEpoch })

	require.Equal(t, "XLM", r.ResolveSymbol(context.Background(), "native"))
	require.Equal(t, "USDC", r.ResolveSymbol(context.Background(), "CCW67TSZV3SSS2HXMBQ5JFGCKJNXKZM7UQUWUZPUTHXSTZLEO7SJMI75"))
	// The allowlist never reaches the external lookup
	require.Zero(t, lookup.calls)
}

func TestResolveSymbol_LookupCachedUntilTTL(t *testing.T) {
	current := testEpoch
	lookup := &fakeLookup{symbols: map[string]string{unknownContract: "aqua"}}
	r := NewAssetNameResolverWithClock(lookup, testLogger(), func() time.Time { return current })

	// First call hits the lookup and normalizes the symbol
	require.Equal(t, "AQUA", r.ResolveSymbol(context.Background(), unknownContract))
	require.Equal(t, 1, lookup.calls)

	// Within the TTL the cache serves it
	current = current.Add(symbolTTL - time.Minute)
	require.Equal(t, "AQUA", r.ResolveSymbol(context.Background(), unknownContract))
	require.Equal(t, 1, lookup.calls)

	// Past the TTL the lookup is consulted again
	current = current.Add(2 * time.Minute)
	require.Equal(t, "AQUA", r.ResolveSymbol(context.Background(), unknownContract))
	require.Equal(t, 2, lookup.calls)
}

func TestResolveSymbol_DegradesToShortenedID(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("indexer down")}
	r := NewAssetNameResolverWithClock(lookup, testLogger(), func() time.Time { return testEpoch })

	got := r.ResolveSymbol(context.Background(), unknownContract)
	require.Equal(t, unknownContract[:4]+"..."+unknownContract[len(unknownContract)-4:], got)
}

func TestResolveSymbol_PlaceholderNotCached(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("indexer down")}
	r := NewAssetNameResolverWithClock(lookup, testLogger(), func() time.Time { return testEpoch })

	r.ResolveSymbol(context.Background(), unknownContract)
	require.Equal(t, 1, lookup.calls)

	// The lookup recovers; the next call must retry rather than serve the
	// shortened placeholder from cache
	lookup.err = nil
	lookup.symbols = map[string]string{unknownContract: "AQUA"}
	require.Equal(t, "AQUA", r.ResolveSymbol(context.Background(), unknownContract))
	require.Equal(t, 2, lookup.calls)
}

func TestResolveSymbol_NoLookupConfigured(t *testing.T) {
	r := NewAssetNameResolverWithClock(nil, testLogger(), func() time.Time { return testEpoch })

	require.Equal(t, "", r.ResolveSymbol(context.Background(), ""))
	require.Equal(t, "SHORT", r.ResolveSymbol(context.Background(), "SHORT"))
	require.Equal(t, unknownContract[:4]+"..."+unknownContract[len(unknownContract)-4:],
		r.ResolveSymbol(context.Background(), unknownContract))
}
