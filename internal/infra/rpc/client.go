// Package rpc implements the raw chain client used by the health
// subsystem. It exposes exactly the four primitive calls the monitor
// and cache need; everything else about the transport stays private.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Block is a minimal view of a chain block.
type Block struct {
	Number       uint64
	TimestampSec uint64
}

// LatestBlock carries the transaction list of the chain head. Only the
// transaction count is consumed (crude success-rate proxy).
type LatestBlock struct {
	Number       uint64
	Transactions []string
}

// ChainClient is the raw per-endpoint client contract consumed by the
// prober and the snapshot refresh.
type ChainClient interface {
	// GetLatestBlockNumber fetches the current chain head number.
	GetLatestBlockNumber(ctx context.Context) (uint64, error)

	// GetBlock fetches number and timestamp of one block.
	GetBlock(ctx context.Context, number uint64) (Block, error)

	// GetGasPrice fetches the current gas price in wei.
	GetGasPrice(ctx context.Context) (*big.Int, error)

	// GetLatestBlock fetches the chain head with its transaction list.
	GetLatestBlock(ctx context.Context) (LatestBlock, error)
}

// HTTPClient implements ChainClient for JSON-RPC over HTTP.
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP-based chain client.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Endpoint returns the URL this client talks to.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

func (c *HTTPClient) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	result, err := c.call(ctx, "eth_blockNumber", []any{})
	if err != nil {
		return 0, err
	}
	return parseHexUint(result)
}

func (c *HTTPClient) GetBlock(ctx context.Context, number uint64) (Block, error) {
	numHex := "0x" + strconv.FormatUint(number, 16)
	result, err := c.call(ctx, "eth_getBlockByNumber", []any{numHex, false})
	if err != nil {
		return Block{}, err
	}
	return parseBlockHeader(result)
}

func (c *HTTPClient) GetGasPrice(ctx context.Context) (*big.Int, error) {
	result, err := c.call(ctx, "eth_gasPrice", []any{})
	if err != nil {
		return nil, err
	}
	hex, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected gas price type %T", result)
	}
	price, ok := new(big.Int).SetString(strings.TrimPrefix(hex, "0x"), 16)
	if !ok {
		return nil, fmt.Errorf("invalid gas price %q", hex)
	}
	return price, nil
}

func (c *HTTPClient) GetLatestBlock(ctx context.Context) (LatestBlock, error) {
	result, err := c.call(ctx, "eth_getBlockByNumber", []any{"latest", false})
	if err != nil {
		return LatestBlock{}, err
	}

	obj, ok := result.(map[string]any)
	if !ok {
		return LatestBlock{}, fmt.Errorf("unexpected block type %T", result)
	}

	header, err := parseBlockHeader(result)
	if err != nil {
		return LatestBlock{}, err
	}

	latest := LatestBlock{Number: header.Number}
	if raw, ok := obj["transactions"].([]any); ok {
		for _, tx := range raw {
			if hash, ok := tx.(string); ok {
				latest.Transactions = append(latest.Transactions, hash)
			}
		}
	}
	return latest, nil
}

// call makes a single JSON-RPC request.
func (c *HTTPClient) call(ctx context.Context, method string, params []any) (any, error) {
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp struct {
		Result any             `json:"result"`
		Error  *map[string]any `json:"error"`
	}

	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if rpcResp.Error != nil {
		errMsg := "unknown error"
		if msg, ok := (*rpcResp.Error)["message"].(string); ok {
			errMsg = msg
		}
		return nil, fmt.Errorf("rpc error: %s", errMsg)
	}

	if rpcResp.Result == nil {
		return nil, fmt.Errorf("rpc call %s: empty result", method)
	}

	return rpcResp.Result, nil
}

func parseBlockHeader(result any) (Block, error) {
	obj, ok := result.(map[string]any)
	if !ok {
		return Block{}, fmt.Errorf("unexpected block type %T", result)
	}

	number, err := parseHexUint(obj["number"])
	if err != nil {
		return Block{}, fmt.Errorf("block number: %w", err)
	}
	timestamp, err := parseHexUint(obj["timestamp"])
	if err != nil {
		return Block{}, fmt.Errorf("block timestamp: %w", err)
	}

	return Block{Number: number, TimestampSec: timestamp}, nil
}

func parseHexUint(v any) (uint64, error) {
	hex, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected hex quantity type %T", v)
	}
	return strconv.ParseUint(strings.TrimPrefix(hex, "0x"), 16, 64)
}
