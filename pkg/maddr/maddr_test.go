package maddr_test

import (
	"testing"

	"github.com/DENNIS-CODES/nox/pkg/maddr"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	a, err := maddr.Parse("/ip4/1.2.3.4/tcp/7777")
	require.NoError(t, err)
	require.Equal(t, "/ip4/1.2.3.4/tcp/7777", a.String())
}

func TestParseInvalid(t *testing.T) {
	_, err := maddr.Parse("")
	require.Error(t, err)

	_, err = maddr.Parse("ip4/1.2.3.4/tcp/7777")
	require.Error(t, err)

	_, err = maddr.Parse("/ip4/1.2.3.4/tcp")
	require.Error(t, err)
}

func TestEqualityAndMapKey(t *testing.T) {
	a := maddr.MustParse("/ip4/1.2.3.4/tcp/7777")
	b := maddr.MustParse("/ip4/1.2.3.4/tcp/7777")
	require.Equal(t, a, b)

	m := map[maddr.Addr]int{a: 1}
	require.Equal(t, 1, m[b])
}

func TestPort(t *testing.T) {
	a := maddr.MustParse("/ip4/1.2.3.4/tcp/7777")
	port, ok := a.Port()
	require.True(t, ok)
	require.Equal(t, 7777, port)

	b := maddr.MustParse("/ip4/1.2.3.4/udp/1234")
	port, ok = b.Port()
	require.True(t, ok)
	require.Equal(t, 1234, port)
}

func TestHost(t *testing.T) {
	a := maddr.MustParse("/ip4/1.2.3.4/tcp/7777")
	host, ok := a.Host()
	require.True(t, ok)
	require.Equal(t, "1.2.3.4", host)

	b := maddr.MustParse("/dns/example.com/tcp/443")
	host, ok = b.Host()
	require.True(t, ok)
	require.Equal(t, "example.com", host)
}

func TestSet(t *testing.T) {
	a := maddr.MustParse("/ip4/1.2.3.4/tcp/7777")
	b := maddr.MustParse("/ip4/5.6.7.8/tcp/7777")

	s := maddr.NewSet(a, a, b)
	require.Len(t, s, 2)
	require.True(t, s.Has(a))

	s.Remove(a)
	require.False(t, s.Has(a))
	require.ElementsMatch(t, []maddr.Addr{b}, s.Slice())
}
