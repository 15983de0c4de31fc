package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	spender = common.HexToAddress("0x00000000fc84484d585C3cF48d213424DFDE43FD")
	holder  = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestApproveCalldata(t *testing.T) {
	data := ApproveCalldata(spender, big.NewInt(7_500_000))

	// approve(address,uint256) selector.
	assert.Equal(t, "0x095ea7b3", hexutil.Encode(data[:4]))
	require.Len(t, data, 4+32+32)

	args, err := erc20ABI.Methods["approve"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, spender, args[0].(common.Address))
	assert.Equal(t, big.NewInt(7_500_000), args[1].(*big.Int))
}

func TestTransferCalldata(t *testing.T) {
	data := TransferCalldata(holder, big.NewInt(500_000))

	// transfer(address,uint256) selector.
	assert.Equal(t, "0xa9059cbb", hexutil.Encode(data[:4]))

	args, err := erc20ABI.Methods["transfer"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, holder, args[0].(common.Address))
	assert.Equal(t, big.NewInt(500_000), args[1].(*big.Int))
}

func TestPurchaseCalldata(t *testing.T) {
	data := PurchaseCalldata(big.NewInt(200), big.NewInt(1), big.NewInt(30))
	require.Len(t, data, 4+3*32)

	args, err := tierRegistryABI.Methods["purchaseTier"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), args[0].(*big.Int))
	assert.Equal(t, big.NewInt(1), args[1].(*big.Int))
	assert.Equal(t, big.NewInt(30), args[2].(*big.Int))
}

type fakeRPC struct {
	method string
	args   []interface{}
	result string
	err    error
}

func (f *fakeRPC) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	f.method = method
	f.args = args
	if f.err != nil {
		return f.err
	}
	raw := result.(*json.RawMessage)
	*raw = json.RawMessage(f.result)
	return nil
}

func TestWalletSender_SendCalls(t *testing.T) {
	rpc := &fakeRPC{result: `{"id":"bundle-1"}`}
	sender := NewWalletSender(rpc)

	calls := []Call{
		{To: spender, Data: []byte{0x01, 0x02}},
		{To: holder, Value: big.NewInt(5), Data: []byte{0x03}},
	}
	id, err := sender.SendCalls(context.Background(), holder, 8453, calls)
	require.NoError(t, err)
	assert.Equal(t, "bundle-1", id)
	assert.Equal(t, "wallet_sendCalls", rpc.method)

	require.Len(t, rpc.args, 1)
	param := rpc.args[0].(sendCallsParam)
	assert.Equal(t, "2.0.0", param.Version)
	assert.Equal(t, "0x2105", param.ChainID)
	assert.Equal(t, holder.Hex(), param.From)
	assert.True(t, param.AtomicRequired)
	require.Len(t, param.Calls, 2)
	assert.Equal(t, "0x0102", param.Calls[0].Data)
	assert.Equal(t, "0x0", param.Calls[0].Value)
	assert.Equal(t, "0x5", param.Calls[1].Value)
}

func TestWalletSender_BareStringResult(t *testing.T) {
	rpc := &fakeRPC{result: `"0xdeadbeef"`}
	sender := NewWalletSender(rpc)

	id, err := sender.SendCalls(context.Background(), holder, 8453, []Call{{To: spender}})
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", id)
}

func TestWalletSender_EmptyBatch(t *testing.T) {
	sender := NewWalletSender(&fakeRPC{})
	_, err := sender.SendCalls(context.Background(), holder, 8453, nil)
	assert.Error(t, err)
}
