// Package ethrpc implements chain access over JSON-RPC with go-ethereum
package ethrpc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
)

// Client bundles the raw RPC connection with the typed eth client
type Client struct {
	rpc *rpc.Client
	eth *ethclient.Client
	log *slog.Logger
}

// Dial connects to url
func Dial(ctx context.Context, url string, log *slog.Logger) (*Client, error) {
	raw, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", url, err)
	}
	return NewClient(raw, log), nil
}

// NewClient wraps an existing RPC connection
func NewClient(raw *rpc.Client, log *slog.Logger) *Client {
	return &Client{rpc: raw, eth: ethclient.NewClient(raw), log: log.With("component", "ethrpc")}
}

// ProvideClient dials the configured network for Wire
func ProvideClient(cfg *config.RuntimeConfig, log *slog.Logger) (*Client, func(), error) {
	if cfg.Network == nil || cfg.Network.RPCURL == "" {
		return nil, nil, fmt.Errorf("no network configured, use --network or set TREB_NETWORK")
	}
	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	c, err := Dial(ctx, cfg.Network.RPCURL, log)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

// Close closes the connection
func (c *Client) Close() {
	c.eth.Close()
}

// Eth returns the typed client
func (c *Client) Eth() *ethclient.Client { return c.eth }

// CallContext performs a raw JSON-RPC call
func (c *Client) CallContext(ctx context.Context, result any, method string, args ...any) error {
	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		return classify(method, err)
	}
	return nil
}

// ClientVersion returns web3_clientVersion
func (c *Client) ClientVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.CallContext(ctx, &version, "web3_clientVersion"); err != nil {
		return "", err
	}
	return version, nil
}

// DevNodeKind reports "anvil" or "hardhat" when the node is a local dev node
func DevNodeKind(clientVersion string) (string, bool) {
	v := strings.ToLower(clientVersion)
	switch {
	case strings.HasPrefix(v, "anvil"):
		return "anvil", true
	case strings.HasPrefix(v, "hardhatnetwork"), strings.HasPrefix(v, "hardhat"):
		return "hardhat", true
	}
	return "", false
}
