package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const tierRegistryABIJSON = `[
	{"type":"function","name":"tierInfo","stateMutability":"view","inputs":[{"name":"tier","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"minDays","type":"uint256"},{"name":"maxDays","type":"uint256"},{"name":"paymentToken","type":"address"},{"name":"tokenPricePerDay","type":"uint256"},{"name":"vault","type":"address"},{"name":"isActive","type":"bool"}]}]},
	{"type":"function","name":"price","stateMutability":"view","inputs":[{"name":"tier","type":"uint256"},{"name":"forDays","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"purchaseTier","stateMutability":"nonpayable","inputs":[{"name":"fid","type":"uint256"},{"name":"tier","type":"uint256"},{"name":"forDays","type":"uint256"}],"outputs":[]}
]`

const erc20ABIJSON = `[
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

var (
	tierRegistryABI = mustParseABI(tierRegistryABIJSON)
	erc20ABI        = mustParseABI(erc20ABIJSON)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("chain: invalid ABI: %v", err))
	}
	return parsed
}

// TierInfo mirrors the registry's tier record.
type TierInfo struct {
	MinDays          *big.Int       `json:"min_days"`
	MaxDays          *big.Int       `json:"max_days"`
	PaymentToken     common.Address `json:"payment_token"`
	TokenPricePerDay *big.Int       `json:"token_price_per_day"`
	Vault            common.Address `json:"vault"`
	IsActive         bool           `json:"is_active"`
}

// ApproveCalldata encodes erc20.approve(spender, amount).
func ApproveCalldata(spender common.Address, amount *big.Int) []byte {
	data, err := erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		panic(err) // static arguments, cannot fail
	}
	return data
}

// TransferCalldata encodes erc20.transfer(to, amount).
func TransferCalldata(to common.Address, amount *big.Int) []byte {
	data, err := erc20ABI.Pack("transfer", to, amount)
	if err != nil {
		panic(err)
	}
	return data
}

// PurchaseCalldata encodes registry.purchaseTier(fid, tier, forDays).
func PurchaseCalldata(fid, tier, forDays *big.Int) []byte {
	data, err := tierRegistryABI.Pack("purchaseTier", fid, tier, forDays)
	if err != nil {
		panic(err)
	}
	return data
}
