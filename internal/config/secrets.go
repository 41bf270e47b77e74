package config

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ECDSAPrivateKey wraps *ecdsa.PrivateKey and implements yaml.Unmarshaler
// to decode from a hex-encoded secp256k1 private key.
type ECDSAPrivateKey struct {
	*ecdsa.PrivateKey
}

// UnmarshalYAML decodes a hex-encoded private key, with or without the
// 0x prefix. An empty string leaves the key nil.
func (k *ECDSAPrivateKey) UnmarshalYAML(unmarshal func(any) error) error {
	var encoded string
	if err := unmarshal(&encoded); err != nil {
		return err
	}

	if encoded == "" {
		return nil
	}

	key, err := ParseECDSAPrivateKey(encoded)
	if err != nil {
		return fmt.Errorf("decode ECDSA private key: %w", err)
	}

	k.PrivateKey = key
	return nil
}

// ParseECDSAPrivateKey parses a hex-encoded secp256k1 private key.
func ParseECDSAPrivateKey(encoded string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(encoded, "0x"))
}
