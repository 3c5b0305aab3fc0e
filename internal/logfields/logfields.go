package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyDependency = "dependency"
	KeyService    = "service"
	KeyOutput     = "display_output"
	KeyPath       = "path"
	KeyCommand    = "command"
	KeyState      = "state"
	KeyStatus     = "status"
	KeyArchive    = "archive"
	KeyUser       = "user"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr         { return slog.String(KeyRunID, id) }
func Dependency(name string) slog.Attr  { return slog.String(KeyDependency, name) }
func Service(name string) slog.Attr     { return slog.String(KeyService, name) }
func Output(id string) slog.Attr        { return slog.String(KeyOutput, id) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Command(c string) slog.Attr        { return slog.String(KeyCommand, c) }
func State(s string) slog.Attr          { return slog.String(KeyState, s) }
func Status(s string) slog.Attr         { return slog.String(KeyStatus, s) }
func Archive(name string) slog.Attr     { return slog.String(KeyArchive, name) }
func User(u string) slog.Attr           { return slog.String(KeyUser, u) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
