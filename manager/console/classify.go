package console

import (
	"regexp"
	"strings"

	"github.com/craftops/console-agent/types"
)

var chatPattern = regexp.MustCompile(`^<[^>]+>`)

// Classify derives a log type from message content. The rule order is
// fixed and first-match-wins, so a line that both reports an error and
// mentions "joined the game" stays an error.
func Classify(message string) types.LogType {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "error") || strings.Contains(lower, "severe"):
		return types.LogError
	case strings.Contains(lower, "warn"):
		return types.LogWarn
	case strings.Contains(lower, "joined the game"):
		return types.LogJoin
	case strings.Contains(lower, "left the game"):
		return types.LogLeave
	case chatPattern.MatchString(strings.TrimSpace(message)):
		return types.LogChat
	default:
		return types.LogInfo
	}
}
