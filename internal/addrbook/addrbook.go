// Package addrbook persists last-known-good addresses per peer across
// restarts. Only cmd/noxnode's bootstrap touches it, to issue Connect
// requests for the stored addresses of a freshly started pool and to
// record a successful bootstrap dial; the connection pool driver keeps
// no disk state of its own and never imports this package.
package addrbook

import (
	"encoding/json"
	"fmt"

	"github.com/DENNIS-CODES/nox/pkg/maddr"
	"github.com/DENNIS-CODES/nox/pkg/peerid"
	bolt "go.etcd.io/bbolt"
)

var peersBucket = []byte("peers")

// Book is a bbolt-backed store of peerid.ID -> []maddr.Addr.
type Book struct {
	db *bolt.DB
}

// Open opens or creates the address book at path.
func Open(path string) (*Book, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("addrbook: opening %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(peersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("addrbook: initializing bucket: %w", err)
	}
	return &Book{db: db}, nil
}

// Close closes the underlying database file.
func (b *Book) Close() error {
	return b.db.Close()
}

// Put records addrs as the last-known-good set for peer, replacing any
// previously stored set.
func (b *Book) Put(peer peerid.ID, addrs []maddr.Addr) error {
	strs := make([]string, len(addrs))
	for i, a := range addrs {
		strs[i] = a.String()
	}
	data, err := json.Marshal(strs)
	if err != nil {
		return fmt.Errorf("addrbook: encoding addresses for %s: %w", peer, err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(peersBucket).Put([]byte(peer.String()), data)
	})
}

// Get returns the stored addresses for peer, and whether any were found.
func (b *Book) Get(peer peerid.ID) ([]maddr.Addr, bool, error) {
	var addrs []maddr.Addr
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(peersBucket).Get([]byte(peer.String()))
		if data == nil {
			return nil
		}
		found = true
		return decodeAddrs(data, &addrs)
	})
	if err != nil {
		return nil, false, fmt.Errorf("addrbook: reading %s: %w", peer, err)
	}
	return addrs, found, nil
}

// Delete removes peer's stored addresses, a no-op if absent.
func (b *Book) Delete(peer peerid.ID) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(peersBucket).Delete([]byte(peer.String()))
	})
}

// All returns every stored peer and its addresses, for bootstrap seeding.
func (b *Book) All() (map[peerid.ID][]maddr.Addr, error) {
	out := make(map[peerid.ID][]maddr.Addr)
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(peersBucket).ForEach(func(k, v []byte) error {
			id, err := peerid.Parse(string(k))
			if err != nil {
				return fmt.Errorf("addrbook: corrupt key %q: %w", k, err)
			}
			var addrs []maddr.Addr
			if err := decodeAddrs(v, &addrs); err != nil {
				return err
			}
			out[id] = addrs
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeAddrs(data []byte, out *[]maddr.Addr) error {
	var strs []string
	if err := json.Unmarshal(data, &strs); err != nil {
		return fmt.Errorf("addrbook: decoding addresses: %w", err)
	}
	addrs := make([]maddr.Addr, 0, len(strs))
	for _, s := range strs {
		a, err := maddr.Parse(s)
		if err != nil {
			return fmt.Errorf("addrbook: decoding address %q: %w", s, err)
		}
		addrs = append(addrs, a)
	}
	*out = addrs
	return nil
}
