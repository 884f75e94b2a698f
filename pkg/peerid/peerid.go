// Package peerid defines the opaque identifier used to name remote nodes
// throughout the connection pool.
package peerid

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// Size is the length in bytes of an ID's underlying digest.
const Size = 32

// ID identifies a remote peer. It is comparable and usable as a map key.
type ID [Size]byte

// Nil is the zero value of ID, never a valid peer identity.
var Nil ID

// FromBytes derives an ID by hashing an arbitrary public-key-like byte
// string. Identity material itself is out of scope for this package; callers
// in the identity/key-handling layer are expected to supply stable bytes.
func FromBytes(b []byte) ID {
	return sha256.Sum256(b)
}

// Random returns a fresh, unpredictable ID. Intended for tests and demos,
// never for real peer identity (which belongs to the key-handling layer).
func Random() ID {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		panic(fmt.Sprintf("peerid: failed to read random bytes: %v", err))
	}
	return id
}

// String returns the base58 encoding of the ID, matching the display
// convention this project's dependencies use for binary identifiers.
func (id ID) String() string {
	return base58.Encode(id[:])
}

// IsZero reports whether id is the nil identity.
func (id ID) IsZero() bool {
	return id == Nil
}

// MarshalJSON renders the ID as its base58 string form.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON parses the base58 string form produced by MarshalJSON.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("peerid: invalid base58 encoding: %w", err)
	}
	if len(decoded) != Size {
		return fmt.Errorf("peerid: expected %d bytes, got %d", Size, len(decoded))
	}
	copy(id[:], decoded)
	return nil
}

// Parse decodes the base58 string form produced by String.
func Parse(s string) (ID, error) {
	var id ID
	decoded, err := base58.Decode(s)
	if err != nil {
		return id, fmt.Errorf("peerid: invalid base58 encoding: %w", err)
	}
	if len(decoded) != Size {
		return id, fmt.Errorf("peerid: expected %d bytes, got %d", Size, len(decoded))
	}
	copy(id[:], decoded)
	return id, nil
}
