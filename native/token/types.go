package token

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Storage abstracts the subset of state manager functionality required by the
// token ledger.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// TrustSource answers whether an address is a recognised liquidity pool. A
// transfer tripping the same-block manipulation guard is exempted when the
// marked account's counterparty is trusted.
type TrustSource interface {
	IsTrusted(addr [20]byte) (bool, error)
}

var (
	balancePrefix   = []byte("token/balance/")
	allowancePrefix = []byte("token/allowance/")
	noncePrefix     = []byte("token/nonce/")
	supplyKey       = []byte("token/supply")
)

// balanceBits bounds holder balances. Amounts, allowances and total supply use
// the full 256-bit range; only the per-holder balance field is narrower.
const balanceBits = 184

// maxBalance is 2^184 - 1, the largest representable holder balance.
var maxBalance = func() *uint256.Int {
	max := new(uint256.Int).Lsh(uint256.NewInt(1), balanceBits)
	return max.Sub(max, uint256.NewInt(1))
}()

// maxUint256 is the sentinel allowance treated as a perpetual approval.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// MaxBalance returns the largest representable holder balance.
func MaxBalance() *big.Int {
	return maxBalance.ToBig()
}

// MaxAllowance returns the sentinel allowance value that is never decremented.
func MaxAllowance() *big.Int {
	return new(big.Int).Set(maxUint256)
}

func balanceKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", balancePrefix, addr))
}

func allowanceKey(owner, spender [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x/%x", allowancePrefix, owner, spender))
}

func nonceKey(owner [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", noncePrefix, owner))
}

func validateAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}
