package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryID_TempAndServer(t *testing.T) {
	temp := TempID(1000)
	assert.True(t, temp.IsTemp())
	assert.Equal(t, int64(1000), temp.Temp())
	assert.Equal(t, "1000", temp.String())

	srv := ServerID("64f1a2")
	assert.False(t, srv.IsTemp())
	assert.Equal(t, "64f1a2", srv.Server())
	assert.Equal(t, "64f1a2", srv.String())

	assert.True(t, EntryID{}.IsZero())
	assert.False(t, temp.IsZero())
}

func TestNewTempID_Monotonic(t *testing.T) {
	prev := NewTempID()
	for i := 0; i < 100; i++ {
		next := NewTempID()
		require.Greater(t, next.Temp(), prev.Temp())
		prev = next
	}
}

func TestEntryID_KeyRoundTrip(t *testing.T) {
	for _, id := range []EntryID{TempID(42), ServerID("abc-123")} {
		parsed, err := ParseKey(id.Key())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}

func TestEntryID_KeySpacesNeverCollide(t *testing.T) {
	// A numeric-looking server id must not map to the temp key space.
	assert.NotEqual(t, TempID(1000).Key(), ServerID("1000").Key())
}

func TestParseKey_Invalid(t *testing.T) {
	for _, key := range []string{"", "x:1", "t:abc", "s:"} {
		_, err := ParseKey(key)
		assert.ErrorIs(t, err, ErrInvalidEntryID, key)
	}
}

func TestEntryID_JSON(t *testing.T) {
	b, err := json.Marshal(TempID(1700000000000))
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", string(b))

	b, err = json.Marshal(ServerID("64f1a2"))
	require.NoError(t, err)
	assert.Equal(t, `"64f1a2"`, string(b))

	var id EntryID
	require.NoError(t, json.Unmarshal([]byte("1234"), &id))
	assert.True(t, id.IsTemp())

	require.NoError(t, json.Unmarshal([]byte(`"srv"`), &id))
	assert.Equal(t, ServerID("srv"), id)

	assert.Error(t, json.Unmarshal([]byte(`""`), &id))
	assert.Error(t, json.Unmarshal([]byte(`null`), &id))
}
