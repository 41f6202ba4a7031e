package logger

import "strings"

var statusAliases = map[string]string{
	"success":  "ok",
	"error":    "fail",
	"failed":   "fail",
	"canceled": "cancelled",
	"skipped":  "skip",
}

func normalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if alias, ok := statusAliases[status]; ok {
		return alias
	}
	return status
}

// defaultKeyOrder puts correlation keys first and the workout, LLM and
// transport details after them.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "update_id", "user_id", "chat_id", "handler",
	"op", "cb_key", "state", "next_state", "duration_ms",
	"exercise", "exercises", "sets", "weight", "reps", "workout_id", "backend",
	"model", "turns", "count", "payload",
	"username", "mode", "listen", "public_url", "method", "path", "http_code",
	"db", "host", "port",
	"err", "err_code", "cause", "retryable", "attempts", "backoff_ms", "rate_limited",
}
