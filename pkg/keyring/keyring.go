// Package keyring parses substrate secret URIs into sr25519 signing pairs.
package keyring

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	subkey "github.com/vedhavyas/go-subkey"
)

// SubstrateNetworkID is the generic substrate SS58 prefix used by subtensor.
const SubstrateNetworkID = 42

// Pair wraps an sr25519 keyring pair. The secret it was derived from stays
// inside the embedded pair for signing; every rendering of a Pair is its
// SS58 address, never the secret.
type Pair struct {
	kp signature.KeyringPair
}

// FromSecret parses a secret in the standard substrate URI form (//Alice,
// mnemonic phrase, hex seed, with an optional derivation path) into an
// sr25519 pair.
func FromSecret(secret string) (Pair, error) {
	kp, err := signature.KeyringPairFromSecret(secret, SubstrateNetworkID)
	if err != nil {
		return Pair{}, fmt.Errorf("parse secret URI: %w", err)
	}
	return Pair{kp: kp}, nil
}

// PublicKey returns a copy of the 32-byte sr25519 public key.
func (p Pair) PublicKey() []byte {
	pub := make([]byte, len(p.kp.PublicKey))
	copy(pub, p.kp.PublicKey)
	return pub
}

// Address returns the SS58 address of the pair.
func (p Pair) Address() string {
	return subkey.SS58Encode(p.kp.PublicKey, SubstrateNetworkID)
}

// Keyring exposes the underlying pair for extrinsic signing.
func (p Pair) Keyring() signature.KeyringPair {
	return p.kp
}

func (p Pair) String() string {
	return p.Address()
}
