// Package log builds the slog loggers used by sitescope.
//
// Every logger wraps its text or JSON handler in a SecureHandler, which
// masks attributes that look like credentials before they are written:
//   - HTTP headers such as Authorization, Cookie and Set-Cookie
//   - the web UI session cookie
//   - provider API keys (Stripe, Google, SendGrid, AWS) and JWTs
//   - PostgreSQL DSNs that carry a password
//
// Masking applies at every level, including Debug.
//
//	logger, err := log.New(os.Stderr, "json", verbose)
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
package log
