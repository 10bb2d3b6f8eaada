package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "onboard/pkg/domain-errors"
)

func TestNewIDsAreDistinct(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsNil())
}

func TestParseSessionID_RoundTrip(t *testing.T) {
	original := NewSessionID()

	parsed, err := ParseSessionID(original.String())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParseSessionID_Invalid(t *testing.T) {
	for _, input := range []string{"", "garbage", "123", "0e8dd053-71d5-44c8-8b80"} {
		_, err := ParseSessionID(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	}
}

func TestParseProducerID_Invalid(t *testing.T) {
	_, err := ParseProducerID("nope")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestParseVerificationID_Invalid(t *testing.T) {
	_, err := ParseVerificationID("nope")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

// IDs must serialize as canonical UUID strings, not raw byte arrays.
func TestIDsMarshalAsStrings(t *testing.T) {
	sessionID := NewSessionID()

	encoded, err := json.Marshal(sessionID)
	require.NoError(t, err)
	assert.Equal(t, `"`+sessionID.String()+`"`, string(encoded))

	var decoded SessionID
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, sessionID, decoded)
}

func TestIDsUnmarshalRejectsMalformed(t *testing.T) {
	var decoded ProducerID
	assert.Error(t, json.Unmarshal([]byte(`"not-a-uuid"`), &decoded))
}
