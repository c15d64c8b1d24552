package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
)

func TestGenerateKeypairProducesDistinctRealKeys(t *testing.T) {
	k1, err := GenerateKeypair()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(k1.PublicKey, "age1"))
	require.True(t, strings.HasPrefix(k1.SecretKey, "AGE-SECRET-KEY-"))

	k2, err := GenerateKeypair()
	require.NoError(t, err)
	require.NotEqual(t, k1.SecretKey, k2.SecretKey)
}

func TestSignDataValidatesBeforeStubbing(t *testing.T) {
	_, err := SignData(nil, make([]byte, 64))
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))

	_, err = SignData([]byte("data"), make([]byte, 10))
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))

	_, err = SignData([]byte("data"), make([]byte, 64))
	require.True(t, mediaerr.Is(err, mediaerr.NotYetIntegrated))
}

func TestEncryptAEADValidatesBeforeStubbing(t *testing.T) {
	_, err := EncryptAEAD(nil, make([]byte, 32), nil)
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))

	_, err = EncryptAEAD([]byte("plaintext"), make([]byte, 32), nil)
	require.True(t, mediaerr.Is(err, mediaerr.NotYetIntegrated))
}

func TestDeriveKeyFromPasswordValidatesBeforeStubbing(t *testing.T) {
	_, err := DeriveKeyFromPassword("", make([]byte, 16))
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))

	_, err = DeriveKeyFromPassword("hunter2", make([]byte, 4))
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))

	_, err = DeriveKeyFromPassword("hunter2", make([]byte, 16))
	require.True(t, mediaerr.Is(err, mediaerr.NotYetIntegrated))
}

func TestHKDFDeriveValidatesOutputLenBounds(t *testing.T) {
	_, err := HKDFDerive(nil, nil, nil, 32)
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))

	_, err = HKDFDerive([]byte("master"), nil, nil, 255*32+1)
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))

	_, err = HKDFDerive([]byte("master"), nil, nil, 32)
	require.True(t, mediaerr.Is(err, mediaerr.NotYetIntegrated))
}

func TestGenerateSaltValidatesLengthBounds(t *testing.T) {
	_, err := GenerateSalt(0)
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))

	_, err = GenerateSalt(1025)
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))

	_, err = GenerateSalt(32)
	require.True(t, mediaerr.Is(err, mediaerr.NotYetIntegrated))
}
