// Package notifier delivers trade and scan announcements.
package notifier

// Notifier sends best-effort announcements (e.g. Telegram, log output).
// Failures are logged by callers and never treated as fatal.
type Notifier interface {
	Send(msg string) error
	SendWithRetry(msg string) error
}
