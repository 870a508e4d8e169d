package attrs

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	id := uuid.New()
	attributes := []any{"person_id", id, "action", "person_updated", "count", 3}

	assert.Equal(t, id.String(), ExtractString(attributes, "person_id"))
	assert.Equal(t, "person_updated", ExtractString(attributes, "action"))
	assert.Equal(t, "", ExtractString(attributes, "count"))
	assert.Equal(t, "", ExtractString(attributes, "missing"))
	assert.Equal(t, "", ExtractString([]any{"dangling"}, "dangling"))
}
