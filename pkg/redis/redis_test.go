package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const serverInfo = `# Server
redis_version:7.2.4
redis_mode:standalone

# Memory
used_memory_human:1.02M
`

func TestInfoValue(t *testing.T) {
	v, ok := infoValue(serverInfo, "redis_version")
	assert.True(t, ok)
	assert.Equal(t, "7.2.4", v)

	v, ok = infoValue(serverInfo, "used_memory_human")
	assert.True(t, ok)
	assert.Equal(t, "1.02M", v)

	_, ok = infoValue(serverInfo, "Server")
	assert.False(t, ok)
}

func TestConnect_Disabled(t *testing.T) {
	client, err := Connect(Config{Enabled: false}, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, client)
}
