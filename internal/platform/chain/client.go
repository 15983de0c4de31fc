package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client performs read-only calls against the tier registry and its payment token.
type Client struct {
	ec       *ethclient.Client
	rpc      *rpc.Client
	registry common.Address
}

// Dial connects to the RPC endpoint and binds the registry address.
func Dial(ctx context.Context, rawURL string, registry common.Address) (*Client, error) {
	rc, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("chain dial: %w", err)
	}
	return &Client{ec: ethclient.NewClient(rc), rpc: rc, registry: registry}, nil
}

func (c *Client) Close() {
	c.rpc.Close()
}

// Registry returns the bound tier registry address.
func (c *Client) Registry() common.Address {
	return c.registry
}

func (c *Client) call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return c.ec.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}

// TierInfo reads the registry's tier record.
func (c *Client) TierInfo(ctx context.Context, tier *big.Int) (*TierInfo, error) {
	data, err := tierRegistryABI.Pack("tierInfo", tier)
	if err != nil {
		return nil, err
	}
	out, err := c.call(ctx, c.registry, data)
	if err != nil {
		return nil, fmt.Errorf("tierInfo call: %w", err)
	}
	var info TierInfo
	if err := tierRegistryABI.UnpackIntoInterface(&info, "tierInfo", out); err != nil {
		return nil, fmt.Errorf("tierInfo decode: %w", err)
	}
	return &info, nil
}

// Price quotes the token cost of a tier for the given number of days.
func (c *Client) Price(ctx context.Context, tier, forDays *big.Int) (*big.Int, error) {
	data, err := tierRegistryABI.Pack("price", tier, forDays)
	if err != nil {
		return nil, err
	}
	out, err := c.call(ctx, c.registry, data)
	if err != nil {
		return nil, fmt.Errorf("price call: %w", err)
	}
	vals, err := tierRegistryABI.Unpack("price", out)
	if err != nil {
		return nil, fmt.Errorf("price decode: %w", err)
	}
	return vals[0].(*big.Int), nil
}

// Decimals reads an ERC-20 token's decimal precision.
func (c *Client) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := erc20ABI.Pack("decimals")
	if err != nil {
		return 0, err
	}
	out, err := c.call(ctx, token, data)
	if err != nil {
		return 0, fmt.Errorf("decimals call: %w", err)
	}
	vals, err := erc20ABI.Unpack("decimals", out)
	if err != nil {
		return 0, fmt.Errorf("decimals decode: %w", err)
	}
	return vals[0].(uint8), nil
}

// BalanceOf reads an ERC-20 balance in smallest units.
func (c *Client) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("balanceOf", owner)
	if err != nil {
		return nil, err
	}
	out, err := c.call(ctx, token, data)
	if err != nil {
		return nil, fmt.Errorf("balanceOf call: %w", err)
	}
	vals, err := erc20ABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("balanceOf decode: %w", err)
	}
	return vals[0].(*big.Int), nil
}
