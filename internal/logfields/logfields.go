package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyAsset      = "asset"
	KeyMediaType  = "media_type"
	KeyProcessor  = "processor"
	KeyPass       = "pass"
	KeyPending    = "pending"
	KeyKit        = "kit"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Asset(p string) slog.Attr        { return slog.String(KeyAsset, p) }
func MediaType(t string) slog.Attr    { return slog.String(KeyMediaType, t) }
func Processor(name string) slog.Attr { return slog.String(KeyProcessor, name) }
func Pass(n int) slog.Attr            { return slog.Int(KeyPass, n) }
func Pending(n int) slog.Attr         { return slog.Int(KeyPending, n) }
func Kit(name string) slog.Attr       { return slog.String(KeyKit, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
