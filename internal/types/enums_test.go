package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentType_JSONRoundTrip(t *testing.T) {
	cases := []struct {
		in   IntentType
		want string
	}{
		{IntentTypeMilestone, `"milestone"`},
		{IntentTypeCheckpoint, `"checkpoint"`},
		{IntentTypeExploration, `"exploration"`},
	}
	for _, tc := range cases {
		b, err := json.Marshal(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, string(b))

		var got IntentType
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, tc.in, got)
	}
}

func TestParseIntentType_UnrecognisedDefaultsToCheckpoint(t *testing.T) {
	assert.Equal(t, IntentTypeCheckpoint, ParseIntentType("bogus"))
	assert.Equal(t, IntentTypeCheckpoint, ParseIntentType(""))
	assert.Equal(t, IntentTypeMilestone, ParseIntentType("milestone"))
}

func TestParseIntentSource_UnrecognisedDefaultsToManual(t *testing.T) {
	assert.Equal(t, IntentSourceManual, ParseIntentSource("bogus"))
	assert.Equal(t, IntentSourceAgent, ParseIntentSource("agent"))
}

func TestIntentSource_JSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(IntentSourceAutomated)
	require.NoError(t, err)
	assert.Equal(t, `"automated"`, string(b))
}
