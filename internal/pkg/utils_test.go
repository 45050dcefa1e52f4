package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetFirstTimeOfWeek(t *testing.T) {
	// Thursday
	at := time.Date(2024, time.July, 11, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.July, 8, 0, 0, 0, 0, time.UTC), GetFirstTimeOfWeek(at))

	monday := time.Date(2024, time.July, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, GetFirstTimeOfWeek(monday))

	sunday := time.Date(2024, time.July, 14, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, monday, GetFirstTimeOfWeek(sunday))
}
