package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Call is a single call descriptor within an atomic wallet batch.
type Call struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// BatchSender submits an ordered call batch to the connected wallet provider.
// The provider decides atomicity; this interface never splits a batch.
type BatchSender interface {
	SendCalls(ctx context.Context, from common.Address, chainID uint64, calls []Call) (string, error)
}

// WalletSender sends batches over the wallet's JSON-RPC endpoint
// using the EIP-5792 wallet_sendCalls method.
type WalletSender struct {
	rpc rpcCaller
}

type rpcCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

func NewWalletSender(rpc rpcCaller) *WalletSender {
	return &WalletSender{rpc: rpc}
}

// WalletSenderFromClient reuses the chain client's RPC connection.
func WalletSenderFromClient(c *Client) *WalletSender {
	return &WalletSender{rpc: c.rpc}
}

type sendCallsParam struct {
	Version        string          `json:"version"`
	ChainID        string          `json:"chainId"`
	From           string          `json:"from"`
	AtomicRequired bool            `json:"atomicRequired"`
	Calls          []sendCallsCall `json:"calls"`
}

type sendCallsCall struct {
	To    string `json:"to"`
	Value string `json:"value"`
	Data  string `json:"data"`
}

// SendCalls submits the calls as one atomic batch and returns the bundle id.
func (s *WalletSender) SendCalls(ctx context.Context, from common.Address, chainID uint64, calls []Call) (string, error) {
	if len(calls) == 0 {
		return "", fmt.Errorf("empty call batch")
	}

	param := sendCallsParam{
		Version:        "2.0.0",
		ChainID:        hexutil.EncodeUint64(chainID),
		From:           from.Hex(),
		AtomicRequired: true,
		Calls:          make([]sendCallsCall, 0, len(calls)),
	}
	for _, c := range calls {
		value := c.Value
		if value == nil {
			value = new(big.Int)
		}
		param.Calls = append(param.Calls, sendCallsCall{
			To:    c.To.Hex(),
			Value: hexutil.EncodeBig(value),
			Data:  hexutil.Encode(c.Data),
		})
	}

	var raw json.RawMessage
	if err := s.rpc.CallContext(ctx, &raw, "wallet_sendCalls", param); err != nil {
		return "", fmt.Errorf("wallet_sendCalls: %w", err)
	}

	// Providers return either {"id": "..."} (5792 final) or a bare id string.
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.ID != "" {
		return obj.ID, nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil && id != "" {
		return id, nil
	}
	return "", fmt.Errorf("wallet_sendCalls: unrecognized result %s", string(raw))
}
