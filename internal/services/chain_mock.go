package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// MockChainClient is an in-memory ChainReader/SymbolLookup for local
// development and tests.
type MockChainClient struct {
	mu       sync.RWMutex
	balances map[string]int64
	prices   map[string]decimal.Decimal
	symbols  map[string]string
	failing  bool
}

// NewMockChainClient creates a mock chain client with a 1.00 USD default
// price for stable-looking assets.
func NewMockChainClient() *MockChainClient {
	return &MockChainClient{
		balances: make(map[string]int64),
		prices: map[string]decimal.Decimal{
			"USDC": decimal.NewFromInt(1),
			"USDT": decimal.NewFromInt(1),
			"XLM":  decimal.NewFromFloat(0.12),
		},
		symbols: make(map[string]string),
	}
}

// SetBalance sets the live balance returned for a contract
func (m *MockChainClient) SetBalance(contractID string, units int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[contractID] = units
}

// SetPrice sets the USD price returned for an asset
func (m *MockChainClient) SetPrice(assetCode string, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[strings.ToUpper(assetCode)] = price
}

// SetSymbol sets the symbol returned for a contract
func (m *MockChainClient) SetSymbol(contractID, symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols[contractID] = symbol
}

// SetFailing makes every call fail, simulating an unreachable chain service
func (m *MockChainClient) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

// GetVaultBalance returns the configured balance for a contract
func (m *MockChainClient) GetVaultBalance(ctx context.Context, contractID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing {
		return 0, fmt.Errorf("mock chain unavailable")
	}
	balance, ok := m.balances[contractID]
	if !ok {
		return 0, fmt.Errorf("no balance configured for contract %s", contractID)
	}
	return balance, nil
}

// ConvertToUSD converts smallest units to USD at the configured price
func (m *MockChainClient) ConvertToUSD(ctx context.Context, assetCode string, units int64) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing {
		return decimal.Zero, fmt.Errorf("mock chain unavailable")
	}
	price, ok := m.prices[strings.ToUpper(assetCode)]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price configured for asset %s", assetCode)
	}
	whole := decimal.NewFromInt(units).Div(smallestUnitScale)
	return whole.Mul(price), nil
}

// LookupSymbol returns the configured symbol for a contract
func (m *MockChainClient) LookupSymbol(ctx context.Context, contractID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing {
		return "", fmt.Errorf("mock chain unavailable")
	}
	symbol, ok := m.symbols[contractID]
	if !ok {
		return "", fmt.Errorf("unknown asset %s", contractID)
	}
	return symbol, nil
}
