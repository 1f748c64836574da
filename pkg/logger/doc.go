// Package logger builds configured log/slog loggers with context-aware
// attribute injection.
//
// Components in this module log through plain *slog.Logger values; this
// package only centralizes construction. The decorator handler runs
// registered ContextExtractor functions on every record, so values stored in
// the request context (request id, tenant id) appear on log lines without the
// call sites threading them explicitly.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(env, "topsteel-core"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//		),
//	)
//	slog.SetDefault(log)
package logger
