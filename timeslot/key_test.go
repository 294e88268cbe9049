package timeslot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseNormalizesWhitespace(t *testing.T) {
	for _, in := range []string{"10:00-10:30", "10:00 - 10:30", " 10:00-\t10:30 "} {
		k, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, Key{Start: 600, End: 630}, k)
		assert.Equal(t, "10:00-10:30", Format(k))
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"10:00",
		"10:00-",
		"9:00-9:30",
		"10:00-10:60",
		"25:00-25:30",
		"10:30-10:00",
		"10:00-10:00",
		"24:00-24:30",
		"10:00-10:30-11:00",
		"ab:cd-ef:gh",
	}
	for _, in := range cases {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrMalformed, in)
	}
}

func TestParseAcceptsEndOfDay(t *testing.T) {
	k, err := Parse("23:30-24:00")
	require.NoError(t, err)
	assert.Equal(t, 30, k.Minutes())
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, Minute(545), m)
	assert.Equal(t, "09:05", m.String())

	_, err = ParseClock("24:01")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestKeyJSONAsMapKey(t *testing.T) {
	in := map[Key]int{{Start: 600, End: 630}: 2}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"10:00-10:30":2}`, string(data))

	var out map[Key]int
	require.NoError(t, json.Unmarshal([]byte(`{"10:00 - 10:30":2}`), &out))
	assert.Equal(t, in, out)
}

func TestKeyBSONStoredAsString(t *testing.T) {
	type doc struct {
		Slot Key `bson:"slot"`
	}
	data, err := bson.Marshal(doc{Slot: Key{Start: 600, End: 630}})
	require.NoError(t, err)

	raw := bson.Raw(data)
	assert.Equal(t, "10:00-10:30", raw.Lookup("slot").StringValue())

	var back doc
	require.NoError(t, bson.Unmarshal(data, &back))
	assert.Equal(t, Key{Start: 600, End: 630}, back.Slot)
}
