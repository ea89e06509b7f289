// Package convlog emits conventional structured log records: one JSON
// object per line, routed to an optional console sink and any number of
// file sinks with size- or time-based rotation.
//
// Key behaviors
//   - Fixed record shape: severity, scope, message, timestamp, then the
//     caller-supplied fields in insertion order
//   - Call-site enrichment (module, function, line) for records at ERROR
//     severity and above
//   - Each record is serialized exactly once; every sink receives the
//     same bytes
//   - Sink failures are isolated: they surface on a separate diagnostics
//     channel, never to the logging caller, never to other sinks
//
// Typical usage
//
//	logger, err := convlog.New(convlog.Options{Scope: "web-app"})
//	if err != nil {
//		panic(err)
//	}
//	defer logger.Close()
//
//	err = logger.AddFileHandler(convlog.FileHandlerOptions{
//		Path:        "logs/app.log",
//		MaxBytes:    10 << 20,
//		BackupCount: 5,
//	})
//
//	logger.Info("User login successful", convlog.F("user_id", 123))
//	logger.Error("User login failed", convlog.F("username", "bob"))
package convlog
