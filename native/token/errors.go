package token

import "errors"

var (
	// ErrInvalidAmount marks nil or negative amounts.
	ErrInvalidAmount = errors.New("token: invalid amount")
	// ErrInsufficientBalance is returned when a debit exceeds the holder's
	// balance.
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	// ErrBalanceOverflow is returned when a credit would push a balance past
	// the maximum representable value.
	ErrBalanceOverflow = errors.New("token: balance overflow")
	// ErrSameBlockManipulation marks transfers rejected by the same-block
	// opposite-direction guard. This is a policy rejection, not a bug; the
	// caller must wait for the next block or route via a trusted pool.
	ErrSameBlockManipulation = errors.New("token: same block manipulation")
	// ErrInsufficientAllowance is returned when transferFrom exceeds the
	// spender's allowance.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	// ErrPermitExpired marks permits presented after their deadline.
	ErrPermitExpired = errors.New("token: permit expired")
	// ErrPermitInvalidSignature marks permits whose signature does not
	// recover to the owner.
	ErrPermitInvalidSignature = errors.New("token: invalid permit signature")
)
