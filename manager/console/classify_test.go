package console

import (
	"testing"

	"github.com/craftops/console-agent/types"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := map[string]types.LogType{
		"[12:00:01] [Server thread/ERROR]: Exception in tick loop": types.LogError,
		"[12:00:01] [Server thread/SEVERE]: Cannot keep up":        types.LogError,
		"[12:00:01] [Server thread/WARN]: Perhaps a server lag":    types.LogWarn,
		"Steve joined the game":                                    types.LogJoin,
		"Steve left the game":                                      types.LogLeave,
		"<Steve> hello world":                                      types.LogChat,
		"[12:00:01] [Server thread/INFO]: Saving chunks":           types.LogInfo,
		"anything else": types.LogInfo,
	}
	for message, expected := range cases {
		assert.Equal(t, expected, Classify(message), message)
	}
}

func TestClassifyOrderFirstMatchWins(t *testing.T) {
	// a line matching several rules resolves via the first rule in order
	assert.Equal(t, types.LogError, Classify("ERROR: Steve joined the game"))
	assert.Equal(t, types.LogWarn, Classify("WARN: Steve left the game"))
	assert.Equal(t, types.LogJoin, Classify("<Steve> joined the game"))
}

func TestClassifyDeterminism(t *testing.T) {
	message := "[12:00:01] [Server thread/WARN]: Can't keep up!"
	first := Classify(message)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Classify(message))
	}
}
