package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// smallestUnitScale converts the chain's integer balance unit into whole
// asset units (7 decimal places).
var smallestUnitScale = decimal.New(1, 7)

// HTTPChainClient reads live vault balances, asset prices and asset metadata
// from an indexer HTTP API. It implements both ChainReader and SymbolLookup.
type HTTPChainClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPChainClient creates a chain client for the given indexer base URL.
// Requests are rate limited so burst analytics traffic cannot hammer the
// upstream API.
func NewHTTPChainClient(baseURL string) *HTTPChainClient {
	return &HTTPChainClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

type balanceResponse struct {
	Balance int64 `json:"balance,string"`
}

type priceResponse struct {
	Symbol   string          `json:"symbol"`
	PriceUSD decimal.Decimal `json:"price_usd"`
}

type assetResponse struct {
	ContractID string `json:"contract_id"`
	Symbol     string `json:"symbol"`
}

// GetVaultBalance reads a vault's live balance in smallest units
func (c *HTTPChainClient) GetVaultBalance(ctx context.Context, contractID string) (int64, error) {
	var resp balanceResponse
	url := fmt.Sprintf("%s/contracts/%s/balance", c.baseURL, contractID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return 0, fmt.Errorf("failed to read vault balance: %w", err)
	}
	return resp.Balance, nil
}

// ConvertToUSD converts a smallest-unit balance of the given asset into USD
func (c *HTTPChainClient) ConvertToUSD(ctx context.Context, assetCode string, units int64) (decimal.Decimal, error) {
	var resp priceResponse
	url := fmt.Sprintf("%s/prices/%s", c.baseURL, strings.ToUpper(assetCode))
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch price for %s: %w", assetCode, err)
	}
	if !resp.PriceUSD.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive price returned for %s", assetCode)
	}

	whole := decimal.NewFromInt(units).Div(smallestUnitScale)
	return whole.Mul(resp.PriceUSD), nil
}

// LookupSymbol resolves an asset contract ID to its symbol
func (c *HTTPChainClient) LookupSymbol(ctx context.Context, contractID string) (string, error) {
	var resp assetResponse
	url := fmt.Sprintf("%s/assets/%s", c.baseURL, contractID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return "", fmt.Errorf("failed to look up asset %s: %w", contractID, err)
	}
	if resp.Symbol == "" {
		return "", fmt.Errorf("empty symbol returned for asset %s", contractID)
	}
	return resp.Symbol, nil
}

func (c *HTTPChainClient) getJSON(ctx context.Context, url string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
