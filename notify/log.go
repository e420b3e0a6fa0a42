package notify

import "github.com/rs/zerolog"

// Log writes notices to a zerolog logger. Errors go out at warn level: they are
// already classified user-facing messages, not faults of this process.
func Log(logger zerolog.Logger) Notifier {
	return NotifierFunc(func(n Notice) {
		event := logger.Info()
		if n.Level == LevelError || n.Level == LevelWarning {
			event = logger.Warn()
		}
		event.Str("level_hint", n.Level.String()).
			Str("category", string(n.Category)).
			Msg(n.Message)
	})
}
