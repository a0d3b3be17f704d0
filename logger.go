package pgxnotify

// logger is the narrowest seam the listener needs for reporting recoverable
// failures. *log.Logger satisfies it, and so does slog via
// slog.NewLogLogger.
type logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(format string, v ...any) {}
