package peerid_test

import (
	"encoding/json"
	"testing"

	"github.com/DENNIS-CODES/nox/pkg/peerid"
	"github.com/stretchr/testify/require"
)

func TestFromBytesDeterministic(t *testing.T) {
	a := peerid.FromBytes([]byte("node-a-pubkey"))
	b := peerid.FromBytes([]byte("node-a-pubkey"))
	require.Equal(t, a, b)

	c := peerid.FromBytes([]byte("node-b-pubkey"))
	require.NotEqual(t, a, c)
}

func TestStringRoundTrip(t *testing.T) {
	id := peerid.FromBytes([]byte("node-a-pubkey"))
	parsed, err := peerid.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestParseInvalid(t *testing.T) {
	_, err := peerid.Parse("not-base58-!!!")
	require.Error(t, err)

	_, err = peerid.Parse(peerid.FromBytes([]byte("short")).String()[:4])
	require.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	id := peerid.Random()
	data, err := json.Marshal(id)
	require.NoError(t, err)

	var out peerid.ID
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, id, out)
}

func TestIsZero(t *testing.T) {
	require.True(t, peerid.Nil.IsZero())
	require.False(t, peerid.Random().IsZero())
}

func TestUsableAsMapKey(t *testing.T) {
	m := make(map[peerid.ID]int)
	a := peerid.Random()
	m[a] = 1
	require.Equal(t, 1, m[a])
}
