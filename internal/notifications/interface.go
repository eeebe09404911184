package notifications

// Alert severity levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
	LevelSuccess = "success"
)

// Notifier delivers out-of-band alerts for signal and liquidation
// events.
type Notifier interface {
	SendAlert(level, message string) error
}
