package keyring

import (
	"encoding/hex"
	"strings"
	"testing"
)

const (
	// Well-known dev account //Alice on the generic substrate network.
	aliceAddress = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	alicePubHex  = "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
)

func TestFromSecretDevURI(t *testing.T) {
	pair, err := FromSecret("//Alice")
	if err != nil {
		t.Fatalf("FromSecret: %v", err)
	}
	if got := pair.Address(); got != aliceAddress {
		t.Errorf("unexpected address: %s", got)
	}
	pub := pair.PublicKey()
	if len(pub) != 32 {
		t.Fatalf("expected 32-byte public key, got %d", len(pub))
	}
	if got := hex.EncodeToString(pub); got != alicePubHex {
		t.Errorf("unexpected public key: %s", got)
	}
}

func TestFromSecretMnemonic(t *testing.T) {
	// The substrate dev phrase, no derivation path.
	pair, err := FromSecret("bottom drive obey lake curtain smoke basket hold race lonely fit walk")
	if err != nil {
		t.Fatalf("FromSecret: %v", err)
	}
	if len(pair.PublicKey()) != 32 {
		t.Fatalf("expected 32-byte public key, got %d", len(pair.PublicKey()))
	}
	if pair.Address() == "" {
		t.Error("expected a non-empty SS58 address")
	}
}

func TestFromSecretRejectsGarbage(t *testing.T) {
	if _, err := FromSecret("definitely not a valid secret phrase or seed"); err == nil {
		t.Fatal("expected an error for an invalid secret")
	}
}

func TestPublicKeyIsACopy(t *testing.T) {
	pair, err := FromSecret("//Alice")
	if err != nil {
		t.Fatalf("FromSecret: %v", err)
	}
	pub := pair.PublicKey()
	pub[0] ^= 0xff
	if hex.EncodeToString(pair.PublicKey()) != alicePubHex {
		t.Error("mutating the returned key must not affect the pair")
	}
}

func TestStringNeverExposesSecret(t *testing.T) {
	secret := "bottom drive obey lake curtain smoke basket hold race lonely fit walk//worker"
	pair, err := FromSecret(secret)
	if err != nil {
		t.Fatalf("FromSecret: %v", err)
	}
	rendered := pair.String()
	if strings.Contains(rendered, "bottom") || strings.Contains(rendered, "worker") {
		t.Fatalf("rendering leaks secret material: %q", rendered)
	}
	if rendered != pair.Address() {
		t.Errorf("expected String to render the address, got %q", rendered)
	}
}
