package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heatscape/uhi-analysis-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	result := &domain.AnalysisResult{
		Type:        "FeatureCollection",
		AnalysisID:  "analysis-1",
		City:        "Pune",
		GeneratedAt: now,
		Rankings: domain.Rankings{
			MostLivable: []domain.LocalitySummary{{Locality: "Kothrud", LivabilityIndex: 72.5}},
		},
		Features: []domain.Feature{
			{Properties: map[string]any{"ambient_temp_celsius": 31.5}},
			{Properties: map[string]any{"ambient_temp_celsius": 31.5}},
		},
	}

	msg, err := serializeToMessage(result)
	require.NoError(t, err)

	assert.Equal(t, []byte("analysis-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"city":"Pune"`)
	assert.Contains(t, string(msg.Value), `"point_count":2`)
	assert.Contains(t, string(msg.Value), `"ambient_temp_celsius":31.5`)
	assert.Contains(t, string(msg.Value), `"Kothrud"`)
	assert.NotContains(t, string(msg.Value), `"features"`, "full point collection is not published")

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "city", msg.Headers[0].Key)
	assert.Equal(t, []byte("Pune"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}
