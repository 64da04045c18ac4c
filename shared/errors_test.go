package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyError(t *testing.T) {
	r := require.New(t)

	cause := errors.New("proof exhausted")
	err := fmt.Errorf("header 3: %w", NewVerifyError(KindUnderrun, cause))

	r.ErrorIs(err, ErrUnderrun)
	r.ErrorIs(err, cause)
	r.NotErrorIs(err, ErrInconsistency)
	r.NotErrorIs(err, ErrDifficulty)
	r.Equal(KindUnderrun, KindOf(err))
	r.Equal("header 3: proof buffer underrun: proof exhausted", err.Error())
}

func TestKindOf(t *testing.T) {
	require.Equal(t, Kind(0), KindOf(errors.New("other")))
	require.Equal(t, Kind(0), KindOf(nil))
	require.Equal(t, KindDifficulty, KindOf(NewVerifyError(KindDifficulty, errors.New("low"))))
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "underrun", KindUnderrun.String())
	require.Equal(t, "inconsistency", KindInconsistency.String())
	require.Equal(t, "difficulty", KindDifficulty.String())
	require.Equal(t, "kind(9)", Kind(9).String())
}
