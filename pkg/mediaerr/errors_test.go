package mediaerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessageFormat(t *testing.T) {
	withFormat := Wrap(StructuralParseFailure, "png", "unexpected chunk order", errors.New("boom"))
	require.Equal(t, "png: StructuralParseFailure: unexpected chunk order", withFormat.Error())

	withoutFormat := New(InvalidMagic, "no known signature matched")
	require.Equal(t, "InvalidMagic: no known signature matched", withoutFormat.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := Wrap(IoFailure, "", "read failed", cause)

	require.ErrorIs(t, wrapped, cause)
}

func TestIs(t *testing.T) {
	err := New(DimensionExceeded, "too wide")
	require.True(t, Is(err, DimensionExceeded))
	require.False(t, Is(err, FileTooLarge))
	require.False(t, Is(errors.New("plain error"), DimensionExceeded))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "ColorTableOutOfRange", ColorTableOutOfRange.String())
	require.Equal(t, "Unknown", Kind(9999).String())
}
