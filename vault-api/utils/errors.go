package utils

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrNilAmount      = errors.New("amount is nil")
	ErrNegativeAmount = errors.New("amount is negative")
)

func TypedErr(e interface{}) error {
	switch t := e.(type) {
	case error:
		return t
	case string:
		if t == "" {
			return nil
		}
		return errors.New(t)
	default:
		return nil
	}
}

// WrapError joins a sentinel with its cause so that errors.Is matches the sentinel
// while the message keeps the cause.
func WrapError(mainErr, subErr interface{}) error {
	main := TypedErr(mainErr)
	sub := TypedErr(subErr)

	switch {
	case main == nil && sub == nil:
		return nil
	case main == nil:
		return sub
	case sub == nil:
		return main
	default:
		return fmt.Errorf("%w: %w", main, sub)
	}
}

// CheckAmount rejects nil and negative token amounts.
func CheckAmount(amount *big.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// CopyInt returns a defensive copy, treating nil as zero.
func CopyInt(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}
