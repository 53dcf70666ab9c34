package yieldtest

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/iov-one/yieldshift"
)

// RandomAddr returns a valid random address generated on the fly.
func RandomAddr(t testing.TB) yieldshift.Address {
	t.Helper()
	raw := make([]byte, yieldshift.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	return yieldshift.Address(raw)
}

// SequenceAddr returns a deterministic address for given number. Useful when
// a test needs several distinct, stable participants.
func SequenceAddr(n uint64) yieldshift.Address {
	raw := make([]byte, yieldshift.AddressLength)
	binary.BigEndian.PutUint64(raw[yieldshift.AddressLength-8:], n)
	return yieldshift.Address(raw)
}

// DecodeAddr takes a hex encoded address string and returns it's raw
// representation. This function ensures that returned value is a valid
// address.
func DecodeAddr(t testing.TB, encoded string) yieldshift.Address {
	t.Helper()
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		t.Fatalf("cannot decode hex string: %s", err)
	}
	a := yieldshift.Address(raw)
	if err := a.Validate(); err != nil {
		t.Fatalf("decoded string is not a valid address: %s", err)
	}
	return a
}

// ParseAddress takes an address in a human readable format and returns its
// binary representation.
func ParseAddress(t testing.TB, encodedAddress string) yieldshift.Address {
	t.Helper()
	addr, err := yieldshift.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
