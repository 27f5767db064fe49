package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifySuccess(t *testing.T) {
	assert.True(t, classifySuccess(200, "/health"))
	assert.True(t, classifySuccess(204, "/"))
	assert.False(t, classifySuccess(500, "/health"))

	assert.True(t, classifySuccess(401, "/mcp"))
	assert.True(t, classifySuccess(403, "/mcp"))
	assert.True(t, classifySuccess(406, "/mcp"))
	assert.False(t, classifySuccess(401, "/health"))
	assert.False(t, classifySuccess(401, "/"))
}

func TestCandidatesFor(t *testing.T) {
	candidates := candidatesFor("example.com")
	assert.Len(t, candidates, 3)
	assert.Equal(t, "https://example.com/health", candidates[0].url)
	assert.Equal(t, "https://example.com/mcp", candidates[1].url)
	assert.Equal(t, "https://example.com/", candidates[2].url)
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, 10*time.Second, ceilDiv(30*time.Second, 3))
	assert.Equal(t, 4*time.Second, ceilDiv(10*time.Second, 3))
	assert.Equal(t, 5*time.Second, ceilDiv(5*time.Second, 1))
}
