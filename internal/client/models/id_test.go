package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalID_IsLocalAndUnique(t *testing.T) {
	a := NewLocalID()
	b := NewLocalID()

	assert.True(t, a.IsLocal())
	assert.NotEqual(t, a.String(), b.String())

	_, err := a.Remote()
	require.Error(t, err, "temporary ids must never reach the remote service")
}

func TestRemoteID(t *testing.T) {
	id := RemoteID("abc-123")
	assert.False(t, id.IsLocal())

	remote, err := id.Remote()
	require.NoError(t, err)
	assert.Equal(t, "abc-123", remote)
}

func TestParseEntryID_RoundTrip(t *testing.T) {
	local := NewLocalID()
	parsed := ParseEntryID(local.String())
	assert.True(t, parsed.IsLocal())
	assert.Equal(t, local.String(), parsed.String())

	parsed = ParseEntryID("server-id")
	assert.False(t, parsed.IsLocal())
}

func TestEntryID_ZeroRemote(t *testing.T) {
	var id EntryID
	assert.True(t, id.IsZero())
	_, err := id.Remote()
	assert.Error(t, err)
}

func TestEntryID_JSONRoundTrip(t *testing.T) {
	local := NewLocalID()
	b, err := json.Marshal(local)
	require.NoError(t, err)

	var decoded EntryID
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.True(t, decoded.IsLocal())
	assert.Equal(t, local.String(), decoded.String())
}
