package shared

import (
	"errors"
	"fmt"
)

// Kind classifies why a proof was rejected. Every kind is fatal for the proof
// being checked; none of them leaves a partial result behind.
type Kind uint8

const (
	KindUnderrun Kind = iota + 1
	KindInconsistency
	KindDifficulty
)

func (k Kind) String() string {
	switch k {
	case KindUnderrun:
		return "underrun"
	case KindInconsistency:
		return "inconsistency"
	case KindDifficulty:
		return "difficulty"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

var (
	ErrUnderrun      = errors.New("proof buffer underrun")
	ErrInconsistency = errors.New("proof inconsistency")
	ErrDifficulty    = errors.New("difficulty test failed")
)

var kindErrors = map[Kind]error{
	KindUnderrun:      ErrUnderrun,
	KindInconsistency: ErrInconsistency,
	KindDifficulty:    ErrDifficulty,
}

// VerifyError is returned by the verifier for any rejected proof.
// errors.Is matches both the wrapped cause and the sentinel of its Kind.
type VerifyError struct {
	Kind Kind
	Err  error
}

func NewVerifyError(kind Kind, err error) *VerifyError {
	return &VerifyError{Kind: kind, Err: err}
}

func (err *VerifyError) Error() string {
	return fmt.Sprintf("%v: %v", kindErrors[err.Kind], err.Err)
}

func (err *VerifyError) Unwrap() error {
	return err.Err
}

func (err *VerifyError) Is(target error) bool {
	return target != nil && kindErrors[err.Kind] == target
}

// KindOf returns the rejection kind of err, or 0 if err is not a VerifyError.
func KindOf(err error) Kind {
	var verr *VerifyError
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return 0
}
