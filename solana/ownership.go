// Package solana provides the narrow Solana-facing capabilities the API
// needs: NFT ownership checks over JSON-RPC and wallet signature
// verification. Nothing else of the RPC surface is exposed.
package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OwnershipChecker answers whether a wallet holds at least one token of a
// mint. Reward handlers depend on this interface only, never on the RPC
// response shape.
type OwnershipChecker interface {
	CheckNftOwnership(ctx context.Context, wallet, mint string) (bool, error)
}

// RPCClient is an OwnershipChecker backed by a Solana JSON-RPC endpoint.
type RPCClient struct {
	url    string
	client *http.Client
}

// NewRPCClient creates a client for the given RPC endpoint URL.
func NewRPCClient(url string) *RPCClient {
	return &RPCClient{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type tokenAccountsResponse struct {
	Result struct {
		Value []struct {
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							TokenAmount struct {
								Amount string `json:"amount"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CheckNftOwnership reports whether wallet holds at least one token of mint,
// via getTokenAccountsByOwner. Any transport or RPC failure is returned as
// an error; callers decide whether to fail open.
func (c *RPCClient) CheckNftOwnership(ctx context.Context, wallet, mint string) (bool, error) {
	payload := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getTokenAccountsByOwner",
		Params: []interface{}{
			wallet,
			map[string]string{"mint": mint},
			map[string]string{"encoding": "jsonParsed"},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("encode rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("rpc status %d", resp.StatusCode)
	}

	var parsed tokenAccountsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("decode rpc response: %w", err)
	}
	if parsed.Error != nil {
		return false, fmt.Errorf("rpc error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}

	for _, v := range parsed.Result.Value {
		if v.Account.Data.Parsed.Info.TokenAmount.Amount != "0" &&
			v.Account.Data.Parsed.Info.TokenAmount.Amount != "" {
			return true, nil
		}
	}
	return false, nil
}
