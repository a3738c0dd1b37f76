package sl

import (
	"log/slog"
)

// Err creates a slog.Attr with the given error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}

	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// With returns a child logger tagged with the operation and division it serves.
func With(log *slog.Logger, opn, division string) *slog.Logger {
	return log.With(
		slog.String("op", opn),
		slog.String("division", division),
	)
}
