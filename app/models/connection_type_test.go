package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnectionType(t *testing.T) {
	for _, ct := range ConnectionTypes {
		parsed, err := ParseConnectionType(string(ct))
		require.NoError(t, err)
		assert.Equal(t, ct, parsed)
		assert.NotEmpty(t, ct.Label())
	}

	parsed, err := ParseConnectionType("  Mentorship ")
	require.NoError(t, err)
	assert.Equal(t, ConnectionMentorship, parsed)

	for _, bad := range []string{"", "casual", "professional", "dating"} {
		_, err := ParseConnectionType(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseQueueKind(t *testing.T) {
	kind, err := ParseQueueKind("casual")
	require.NoError(t, err)
	assert.Equal(t, QueueCasual, kind)

	kind, err = ParseQueueKind("formal")
	require.NoError(t, err)
	assert.Equal(t, QueueProfessional, kind)

	_, err = ParseQueueKind("b2b")
	assert.Error(t, err)
}

func TestCallType(t *testing.T) {
	assert.Equal(t, "mentorship", CallType(QueueProfessional, ConnectionMentorship))
	assert.Equal(t, "casual", CallType(QueueCasual, ""))
	assert.Equal(t, "casual", CallType(QueueCasual, ConnectionB2B))
}
