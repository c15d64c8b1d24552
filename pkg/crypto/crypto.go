// Package crypto is the Go realization of the original source's
// crypto/{sign,encrypt,derive,secure}.rs: every one of those Rust
// functions validates its inputs and then returns "libsodium not yet
// integrated" — a future-collaborator interface, not a finished
// subsystem. This package keeps that shape. The one exception is
// keypair generation, which filippo.io/age (a direct dependency of this
// module, used only here) can do for real without any native
// integration pending, so GenerateKeypair returns a working keypair
// instead of a stub.
package crypto

import (
	"filippo.io/age"

	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
)

// Keypair is an age X25519 identity, the nearest real equivalent this
// module's dependency stack has to the Rust source's Ed25519
// PublicKey/SecretKey pair.
type Keypair struct {
	PublicKey string
	SecretKey string
}

// GenerateKeypair is the one crypto operation with a real
// implementation: filippo.io/age.GenerateX25519Identity needs no
// pending native integration, unlike everything else in this package.
func GenerateKeypair() (*Keypair, error) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.NotYetIntegrated, "crypto", "keypair generation failed", err)
	}
	return &Keypair{PublicKey: id.Recipient().String(), SecretKey: id.String()}, nil
}

// SignData validates its inputs per the original source's sign_data and
// then reports NotYetIntegrated: this module has no wired Ed25519
// signing primitive.
func SignData(data []byte, secretKey []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, "crypto: cannot sign empty data")
	}
	if len(secretKey) != 64 {
		return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "crypto: secret key must be 64 bytes, got %d", len(secretKey))
	}
	return nil, mediaerr.New(mediaerr.NotYetIntegrated, "Ed25519 signing is not yet integrated")
}

// VerifySignature validates shapes and returns NotYetIntegrated; it
// never silently reports a signature valid without checking it.
func VerifySignature(data, signature, publicKey []byte) (bool, error) {
	if len(signature) != 64 {
		return false, mediaerr.Newf(mediaerr.StructuralParseFailure, "crypto: signature must be 64 bytes, got %d", len(signature))
	}
	if len(publicKey) != 32 {
		return false, mediaerr.Newf(mediaerr.StructuralParseFailure, "crypto: public key must be 32 bytes, got %d", len(publicKey))
	}
	return false, mediaerr.New(mediaerr.NotYetIntegrated, "Ed25519 verification is not yet integrated")
}

// EncryptAEAD validates its inputs per the original source's
// encrypt_aead and reports NotYetIntegrated.
func EncryptAEAD(plaintext, key, associatedData []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, "crypto: cannot encrypt empty data")
	}
	if len(key) != 32 {
		return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "crypto: key must be 32 bytes, got %d", len(key))
	}
	return nil, mediaerr.New(mediaerr.NotYetIntegrated, "AEAD encryption is not yet integrated")
}

// DecryptAEAD mirrors EncryptAEAD's validation shape.
func DecryptAEAD(ciphertext, key, nonce, associatedData []byte) ([]byte, error) {
	if len(key) != 32 {
		return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "crypto: key must be 32 bytes, got %d", len(key))
	}
	if len(nonce) != 24 {
		return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "crypto: nonce must be 24 bytes, got %d", len(nonce))
	}
	return nil, mediaerr.New(mediaerr.NotYetIntegrated, "AEAD decryption is not yet integrated")
}

// DeriveKeyFromPassword validates the same constraints the original
// source's derive_key_from_password asserts (non-empty password, salt
// of at least 16 bytes) before reporting NotYetIntegrated.
func DeriveKeyFromPassword(password string, salt []byte) ([32]byte, error) {
	var out [32]byte
	if password == "" {
		return out, mediaerr.New(mediaerr.StructuralParseFailure, "crypto: password cannot be empty")
	}
	if len(salt) < 16 {
		return out, mediaerr.New(mediaerr.StructuralParseFailure, "crypto: salt must be at least 16 bytes")
	}
	return out, mediaerr.New(mediaerr.NotYetIntegrated, "Argon2id key derivation is not yet integrated")
}

// HKDFDerive validates the same constraints as the original source's
// hkdf_derive (non-empty master key, 1..=255*32 output length).
func HKDFDerive(masterKey, salt, info []byte, outputLen int) ([]byte, error) {
	if len(masterKey) == 0 {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, "crypto: master key cannot be empty")
	}
	if outputLen <= 0 || outputLen > 255*32 {
		return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "crypto: invalid HKDF output length %d", outputLen)
	}
	return nil, mediaerr.New(mediaerr.NotYetIntegrated, "HKDF derivation is not yet integrated")
}

// GenerateSalt validates the length bound the original source's
// generate_salt asserts (1..=1024 bytes).
func GenerateSalt(length int) ([]byte, error) {
	if length <= 0 || length > 1024 {
		return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "crypto: invalid salt length %d", length)
	}
	return nil, mediaerr.New(mediaerr.NotYetIntegrated, "secure salt generation is not yet integrated")
}
