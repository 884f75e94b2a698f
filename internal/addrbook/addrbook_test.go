package addrbook_test

import (
	"path/filepath"
	"testing"

	"github.com/DENNIS-CODES/nox/internal/addrbook"
	"github.com/DENNIS-CODES/nox/pkg/maddr"
	"github.com/DENNIS-CODES/nox/pkg/peerid"
	"github.com/stretchr/testify/require"
)

func openTestBook(t *testing.T) *addrbook.Book {
	t.Helper()
	path := filepath.Join(t.TempDir(), "addrbook.db")
	b, err := addrbook.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, b.Close()) })
	return b
}

func TestPutGetRoundTrip(t *testing.T) {
	b := openTestBook(t)
	peer := peerid.Random()
	addrs := []maddr.Addr{
		maddr.MustParse("/ip4/1.2.3.4/tcp/7777"),
		maddr.MustParse("/ip4/5.6.7.8/tcp/8888"),
	}
	require.NoError(t, b.Put(peer, addrs))

	got, found, err := b.Get(peer)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, addrs, got)
}

func TestGetMissingPeer(t *testing.T) {
	b := openTestBook(t)
	got, found, err := b.Get(peerid.Random())
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, got)
}

func TestDelete(t *testing.T) {
	b := openTestBook(t)
	peer := peerid.Random()
	addrs := []maddr.Addr{maddr.MustParse("/ip4/1.2.3.4/tcp/7777")}
	require.NoError(t, b.Put(peer, addrs))
	require.NoError(t, b.Delete(peer))

	_, found, err := b.Get(peer)
	require.NoError(t, err)
	require.False(t, found)
}

func TestAll(t *testing.T) {
	b := openTestBook(t)
	p1, p2 := peerid.Random(), peerid.Random()
	a1 := []maddr.Addr{maddr.MustParse("/ip4/1.2.3.4/tcp/7777")}
	a2 := []maddr.Addr{maddr.MustParse("/ip4/5.6.7.8/tcp/8888")}
	require.NoError(t, b.Put(p1, a1))
	require.NoError(t, b.Put(p2, a2))

	all, err := b.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, a1, all[p1])
	require.Equal(t, a2, all[p2])
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addrbook.db")
	peer := peerid.Random()
	addrs := []maddr.Addr{maddr.MustParse("/ip4/1.2.3.4/tcp/7777")}

	b1, err := addrbook.Open(path)
	require.NoError(t, err)
	require.NoError(t, b1.Put(peer, addrs))
	require.NoError(t, b1.Close())

	b2, err := addrbook.Open(path)
	require.NoError(t, err)
	defer b2.Close()

	got, found, err := b2.Get(peer)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, addrs, got)
}
