package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	obstacle := domain.Obstacle{
		Identifier:   "01-001307",
		Verification: domain.VerificationOperational,
		Country:      "US",
		City:         "MOBILE",
		Latitude:     30.179167,
		Longitude:    -88.0775,
		Type:         "TOWER",
		Quantity:     1,
		HeightAGL:    562,
		HeightMSL:    731,
	}
	publishedAt := time.Date(2025, time.December, 25, 12, 0, 0, 0, time.UTC)

	msg, err := serializeToMessage(obstacle, []byte("20251221"), []byte(publishedAt.Format(time.RFC3339)))
	require.NoError(t, err)

	assert.Equal(t, []byte("01-001307"), msg.Key)
	assert.Contains(t, string(msg.Value), `"obstacle_type":"TOWER"`)
	assert.Contains(t, string(msg.Value), `"height_msl_ft":731`)
	assert.NotContains(t, string(msg.Value), `"state"`, "blank state stays out of the payload")
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "cycle", msg.Headers[0].Key)
	assert.Equal(t, []byte("20251221"), msg.Headers[0].Value)
	assert.Equal(t, "published_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-12-25T12:00:00Z"), msg.Headers[1].Value)
}
