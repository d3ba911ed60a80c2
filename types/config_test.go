package types

import (
	"testing"

	"github.com/jinzhu/configor"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	config := &Config{}
	err := configor.Load(config, "../console-agent.yaml.sample")
	assert.NoError(err)
	assert.Equal(config.PidFile, "/tmp/console-agent.pid")
	assert.Equal(config.Panel.Endpoint, "http://127.0.0.1:8080")
	assert.Equal(config.Panel.WSPath, "/ws")
	assert.Equal(config.HostName, "")

	assert.Equal(config.Poll.JobInterval, 2)
	assert.Equal(config.Poll.StatusInterval, 5)
	assert.Equal(config.Poll.JobLimit, 20)

	assert.Equal(config.Console.BufferSize, 1000)
	assert.Equal(config.Console.PreviewSize, 50)

	assert.Equal(config.Metrics.Step, int64(10))
	assert.Equal(config.Metrics.Transfers, []string{"127.0.0.1:8125"})
	assert.Equal(config.API.Addr, "127.0.0.1:12380")
}

func TestConfigDefaults(t *testing.T) {
	assert := assert.New(t)

	config := &Config{}
	err := configor.Load(config)
	assert.NoError(err)
	assert.Equal(config.Poll.JobInterval, 2)
	assert.Equal(config.Poll.StatusInterval, 5)
	assert.Equal(config.Console.BufferSize, 1000)
	assert.Equal(config.Console.PreviewSize, 50)
	assert.Equal(config.Panel.WSPath, "/ws")
}
