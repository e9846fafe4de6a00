package crypto

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/btcsuite/btcutil/bech32"
)

func TestGeneratedKeyDerivesAddress(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := key.PubKey().Address()
	if len(addr.Bytes()) != 20 {
		t.Fatalf("address length: got %d want 20", len(addr.Bytes()))
	}
	if addr.Prefix() != BBGPrefix {
		t.Fatalf("address prefix: got %s", addr.Prefix())
	}

	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("restore key: %v", err)
	}
	if !restored.PubKey().Address().Equal(addr) {
		t.Fatal("restored key derives a different address")
	}
}

func TestAddressBech32RoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAB}, 20)
	addr := MustNewAddress(BBGPrefix, raw)

	encoded := addr.String()
	if !strings.HasPrefix(encoded, "bbg1") {
		t.Fatalf("encoded address prefix: %s", encoded)
	}
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.Equal(addr) {
		t.Fatalf("round trip mismatch: %s vs %s", decoded, addr)
	}
}

func TestAddressRejectsBadLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for short payload")
		}
	}()
	NewAddress(BBGPrefix, []byte{0x01, 0x02})
}

func TestDecodeAddressRejectsShortPayload(t *testing.T) {
	// A checksum-valid string carrying only five payload bytes must surface
	// an error rather than reach the 20-byte constructor.
	conv, err := bech32.ConvertBits(bytes.Repeat([]byte{0x01}, 5), 8, 5, true)
	if err != nil {
		t.Fatalf("convert bits: %v", err)
	}
	encoded, err := bech32.Encode(string(BBGPrefix), conv)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeAddress(encoded); err == nil {
		t.Fatal("expected error for short payload")
	}

	var addr Address
	if err := addr.UnmarshalText([]byte(encoded)); err == nil {
		t.Fatal("expected unmarshal error for short payload")
	}
}

func TestAddressJSONRoundTrip(t *testing.T) {
	addr := MustNewAddress(BBGPrefix, bytes.Repeat([]byte{0x42}, 20))
	encoded, err := json.Marshal(addr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Address
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Equal(addr) {
		t.Fatal("json round trip mismatch")
	}

	// Empty text decodes to the zero address.
	var zero Address
	if err := json.Unmarshal([]byte(`""`), &zero); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if !zero.IsZero() {
		t.Fatal("empty string should decode to zero address")
	}
}
