package notifier

import "github.com/rs/zerolog"

// LogNotifier writes announcements to the structured log. It stands in for
// the audio/TTS alerting of earlier incarnations of this tool and is the
// default sink when no Telegram credentials are configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: logger}
}

func (l *LogNotifier) Send(message string) error {
	l.log.Info().Str("announcement", message).Msg("ALERT")
	return nil
}

func (l *LogNotifier) SendWithRetry(message string) error {
	return l.Send(message)
}
