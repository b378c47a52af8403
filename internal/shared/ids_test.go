package shared

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewIDIsUniqueWithinMillisecond(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewID("AUD", at)
		assert.True(t, strings.HasPrefix(id, "AUD-"))
		assert.Equal(t, strings.ToUpper(id), id)
		_, dup := seen[id]
		assert.False(t, dup, id)
		seen[id] = struct{}{}
	}
}
