package thread

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadpost/utils"
)

func TestDeriveIdentityOrderIndependent(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	a, err := DeriveIdentity([]string{"a@x.com", "b@x.com"}, now)
	require.NoError(t, err)
	b, err := DeriveIdentity([]string{"b@x.com", "a@x.com"}, now)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestDeriveIdentityShape(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	id, err := DeriveIdentity([]string{"B@X.com", "a@x.com"}, now)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("a@x.com_b@x.com_%d", now.UnixMilli()), id)
}

func TestDeriveIdentityFreshTimestampPerConversation(t *testing.T) {
	participants := []string{"a@x.com", "b@x.com"}

	first, err := DeriveIdentity(participants, time.UnixMilli(1000))
	require.NoError(t, err)
	second, err := DeriveIdentity(participants, time.UnixMilli(1001))
	require.NoError(t, err)

	// Repeat conversations between the same pair stay distinct threads
	assert.NotEqual(t, first, second)
}

func TestDeriveIdentityEmptyParticipants(t *testing.T) {
	_, err := DeriveIdentity(nil, time.Now())
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.Classify(err))
}

func TestNormalizeParticipants(t *testing.T) {
	got := NormalizeParticipants([]string{"A@x.com", "b@x.com", "a@X.COM", " ", "b@x.com"})
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, got)
}
