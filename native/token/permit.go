package token

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// PermitVersion identifies the permit signing domain layout.
const PermitVersion = "1"

const permitSignatureLength = 65

// DomainSeparator returns the signing-domain hash. The value is memoized and
// only recomputed when the chain ID changes.
func (e *Engine) DomainSeparator() [32]byte {
	if e.domainSet && e.domainChainID == e.chainID {
		return e.domain
	}
	payload := struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		ChainID uint64 `json:"chainId"`
	}{Name: e.name, Version: PermitVersion, ChainID: e.chainID}
	encoded, _ := json.Marshal(payload)
	var domain [32]byte
	copy(domain[:], ethcrypto.Keccak256(encoded))
	e.domain = domain
	e.domainChainID = e.chainID
	e.domainSet = true
	return domain
}

// Nonce returns the next unused permit nonce for owner.
func (e *Engine) Nonce(owner [20]byte) (uint64, error) {
	var nonce uint64
	ok, err := e.store.KVGet(nonceKey(owner), &nonce)
	if err != nil {
		return 0, fmt.Errorf("token: load nonce: %w", err)
	}
	if !ok {
		return 0, nil
	}
	return nonce, nil
}

// permitPayload is the canonical structure hashed for permit signatures.
type permitPayload struct {
	Domain   string `json:"domain"`
	Owner    string `json:"owner"`
	Spender  string `json:"spender"`
	Value    string `json:"value"`
	Nonce    uint64 `json:"nonce"`
	Deadline int64  `json:"deadline"`
}

// PermitDigest computes the digest an owner signs to authorise spender for
// value until deadline with the supplied nonce.
func (e *Engine) PermitDigest(owner, spender [20]byte, value *big.Int, nonce uint64, deadline int64) ([32]byte, error) {
	var digest [32]byte
	if err := validateAmount(value); err != nil {
		return digest, err
	}
	domain := e.DomainSeparator()
	payload := permitPayload{
		Domain:   "0x" + hex.EncodeToString(domain[:]),
		Owner:    "0x" + hex.EncodeToString(owner[:]),
		Spender:  "0x" + hex.EncodeToString(spender[:]),
		Value:    value.String(),
		Nonce:    nonce,
		Deadline: deadline,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return digest, err
	}
	copy(digest[:], ethcrypto.Keccak256(encoded))
	return digest, nil
}

// Permit applies an approval authorised by an off-chain signature from the
// owner. The signature covers the current nonce, which is consumed on
// success, so a permit can be applied at most once.
func (e *Engine) Permit(owner, spender [20]byte, value *big.Int, deadline int64, sig []byte) error {
	if err := validateAmount(value); err != nil {
		return err
	}
	if deadline < e.nowFn() {
		return ErrPermitExpired
	}
	if len(sig) != permitSignatureLength {
		return ErrPermitInvalidSignature
	}

	staged := newStagedState(e.store)

	var nonce uint64
	if _, err := staged.KVGet(nonceKey(owner), &nonce); err != nil {
		return fmt.Errorf("token: load nonce: %w", err)
	}
	digest, err := e.PermitDigest(owner, spender, value, nonce, deadline)
	if err != nil {
		return err
	}
	pub, err := ethcrypto.SigToPub(digest[:], sig)
	if err != nil {
		return ErrPermitInvalidSignature
	}
	if ethcrypto.PubkeyToAddress(*pub) != common.Address(owner) {
		return ErrPermitInvalidSignature
	}

	if err := staged.KVPut(nonceKey(owner), nonce+1); err != nil {
		return fmt.Errorf("token: store nonce: %w", err)
	}
	evts, err := e.approveStaged(staged, owner, spender, value)
	if err != nil {
		return err
	}
	return e.finish(staged, evts)
}
