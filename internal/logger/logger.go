package logger

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger forwards the leveled log lines of the HTTP client to zerolog. Request chatter is only visible with
// --verbose, failed attempts are logged as warnings.
type Logger struct{}

func (*Logger) Error(msg string, keysAndValues ...interface{}) {
	event(log.Warn(), keysAndValues).Msg(msg)
}

func (*Logger) Warn(msg string, keysAndValues ...interface{}) {
	event(log.Warn(), keysAndValues).Msg(msg)
}

func (*Logger) Info(msg string, keysAndValues ...interface{}) {
	event(log.Debug(), keysAndValues).Msg(msg)
}

func (*Logger) Debug(msg string, keysAndValues ...interface{}) {
	event(log.Debug(), keysAndValues).Msg(msg)
}

func event(e *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, keysAndValues[i+1])
	}
	return e
}
