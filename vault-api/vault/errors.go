package vault

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/shares"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/signer"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy"
)

var (
	ErrSignatureUsed      = errors.New("signature already used")
	ErrDepositTooLow      = errors.New("deposit below minimum")
	ErrDepositTooHigh     = errors.New("deposit above maximum")
	ErrZeroShares         = errors.New("zero shares")
	ErrInsufficientShares = shares.ErrInsufficientShares
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidReceiver    = errors.New("receiver is the zero address")
	ErrInvalidBounds      = errors.New("minimum deposit above maximum deposit")

	ErrAlreadyInitialized      = errors.New("vault already initialized")
	ErrNotInitialized          = errors.New("vault not initialized")
	ErrInsufficientInitBalance = errors.New("vault holds less than the initial deposit")
	ErrRequestNotFound         = errors.New("withdrawal request not found")
	ErrRequestAlreadyClaimed   = errors.New("withdrawal request already claimed")
	ErrRequestExists           = errors.New("withdrawal request already exists")
	ErrNoLongerSupported       = errors.New("no longer supported")

	ErrExecutionFailed  = errors.New("execution failed")
	ErrValuationFailed  = errors.New("valuation failed")
	ErrAssetCallFailed  = errors.New("asset call failed")
	ErrFeeExceedsAssets = errors.New("fee exceeds total assets")

	ErrNilStrategy  = errors.New("nil strategy")
	ErrNilAgent     = errors.New("nil agent")
	ErrNilOperator  = errors.New("nil operator")
	ErrNotOperator  = errors.New("caller is not the operator")
	ErrNotAgent     = errors.New("caller is not the agent")
	ErrUnauthorized = errors.New("caller not authorized")

	ErrReentrantCall = errors.New("reentrant call")

	ErrInvalidFee          = errors.New("fee amount must be positive")
	ErrInvalidFeeReceiver  = errors.New("fee receiver is the zero address")
	ErrFeeExceedsRemaining = errors.New("fee not below remaining amount")
)

// Re-exported so callers can match every failure of a vault call from one package.
var (
	ErrSignatureExpired = signer.ErrSignatureExpired
	ErrSignatureInvalid = signer.ErrSignatureInvalid
	ErrWithdrawFailed   = strategy.ErrWithdrawFailed
)

// ExecutionError reports the first failing action of a batch.
type ExecutionError struct {
	Index  int
	Target common.Address
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: action %d to %s: %v", ErrExecutionFailed, e.Index, e.Target.Hex(), e.Err)
}

func (e *ExecutionError) Unwrap() []error {
	return []error{ErrExecutionFailed, e.Err}
}

// FeeError reports an invalid entry of a fee list.
type FeeError struct {
	Index int
	Err   error
}

func (e *FeeError) Error() string {
	return fmt.Sprintf("fee %d: %v", e.Index, e.Err)
}

func (e *FeeError) Unwrap() error {
	return e.Err
}

var rejectionReasons = []struct {
	err    error
	reason string
}{
	{ErrReentrantCall, "reentrant"},
	{ErrSignatureUsed, "signature_used"},
	{ErrSignatureExpired, "signature_expired"},
	{ErrSignatureInvalid, "signature_invalid"},
	{ErrDepositTooLow, "deposit_too_low"},
	{ErrDepositTooHigh, "deposit_too_high"},
	{ErrZeroShares, "zero_shares"},
	{ErrInsufficientShares, "insufficient_shares"},
	{ErrAlreadyInitialized, "already_initialized"},
	{ErrNotInitialized, "not_initialized"},
	{ErrRequestNotFound, "request_not_found"},
	{ErrRequestAlreadyClaimed, "request_claimed"},
	{ErrRequestExists, "request_exists"},
	{ErrNoLongerSupported, "no_longer_supported"},
	{ErrExecutionFailed, "execution_failed"},
	{ErrWithdrawFailed, "withdraw_failed"},
	{ErrValuationFailed, "valuation_failed"},
	{ErrNotOperator, "not_operator"},
	{ErrNotAgent, "not_agent"},
}

func rejectionReason(err error) string {
	for _, r := range rejectionReasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	var feeErr *FeeError
	if errors.As(err, &feeErr) {
		return "invalid_fee"
	}
	return "other"
}
