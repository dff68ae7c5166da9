package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// symbolTTL bounds how long a resolved symbol is served before the external
// lookup is consulted again.
const symbolTTL = time.Hour

// wellKnownAssets is the static allowlist fast path: contract IDs whose
// symbols never need an external lookup.
var wellKnownAssets = map[string]string{
	"native": "XLM",
	"CCW67TSZV3SSS2HXMBQ5JFGCKJNXKZM7UQUWUZPUTHXSTZLEO7SJMI75": "USDC",
	"CDLZFC3SYJYDZT7K67VZ75HPJVIEUVNIXF47ZG2FB2RMQQVU2HHGCYSC": "USDT",
	"CB64D3G7SM2RTH6JSGG34DDTFTQ5CFDKVDZJZSODMCX4NJ2HV2KN7OHT": "XLM",
}

type symbolEntry struct {
	symbol    string
	expiresAt time.Time
}

// symbolCache is a process-wide TTL cache for resolved asset symbols. Entries
// are immutable within their TTL window; a concurrent miss at worst triggers a
// redundant external lookup.
type symbolCache struct {
	mu      sync.RWMutex
	entries map[string]symbolEntry
	now     func() time.Time
}

func newSymbolCache(now func() time.Time) *symbolCache {
	return &symbolCache{
		entries: make(map[string]symbolEntry),
		now:     now,
	}
}

func (c *symbolCache) get(contractID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[contractID]
	if !ok || c.now().After(entry.expiresAt) {
		return "", false
	}
	return entry.symbol, true
}

func (c *symbolCache) put(contractID, symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[contractID] = symbolEntry{
		symbol:    symbol,
		expiresAt: c.now().Add(symbolTTL),
	}
}

// AssetNameResolver maps asset contract IDs to display symbols using an
// allowlist fast path, a TTL cache, and an external lookup that degrades to a
// shortened contract ID when it fails.
type AssetNameResolver struct {
	lookup SymbolLookup
	cache  *symbolCache
	logger *zap.Logger
}

// NewAssetNameResolver creates a resolver with a wall-clock cache
func NewAssetNameResolver(lookup SymbolLookup, logger *zap.Logger) *AssetNameResolver {
	return NewAssetNameResolverWithClock(lookup, logger, time.Now)
}

// NewAssetNameResolverWithClock creates a resolver with an injected clock so
// cache expiry is testable.
func NewAssetNameResolverWithClock(lookup SymbolLookup, logger *zap.Logger, now func() time.Time) *AssetNameResolver {
	return &AssetNameResolver{
		lookup: lookup,
		cache:  newSymbolCache(now),
		logger: logger,
	}
}

// ResolveSymbol resolves a contract ID to a symbol. It never fails: an
// unreachable lookup degrades to a shortened contract ID, and that placeholder
// is not cached so a later call can still recover the real symbol.
func (r *AssetNameResolver) ResolveSymbol(ctx context.Context, contractID string) string {
	if contractID == "" {
		return ""
	}

	if symbol, ok := wellKnownAssets[contractID]; ok {
		return symbol
	}
	if symbol, ok := r.cache.get(contractID); ok {
		return symbol
	}

	if r.lookup != nil {
		symbol, err := r.lookup.LookupSymbol(ctx, contractID)
		if err == nil && strings.TrimSpace(symbol) != "" {
			symbol = strings.ToUpper(strings.TrimSpace(symbol))
			r.cache.put(contractID, symbol)
			return symbol
		}
		if err != nil {
			r.logger.Debug("symbol lookup failed, using shortened contract ID",
				zap.String("contract_id", contractID),
				zap.Error(err))
		}
	}

	return shortenContractID(contractID)
}

// shortenContractID renders an unresolvable contract ID as a compact
// placeholder, e.g. "CCW6...MI75".
func shortenContractID(contractID string) string {
	if len(contractID) <= 10 {
		return contractID
	}
	return contractID[:4] + "..." + contractID[len(contractID)-4:]
}
