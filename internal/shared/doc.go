// Package shared holds helpers used by more than one package.
//
// The testutil subpackage builds sales exports for tests (an .xlsx with
// the POS banner row, delimited text) and captures slog output:
//
//	logger, capture := testutil.NewTestLogger()
//	store := services.NewSessionStore(cfg, logger)
//	...
//	testutil.AssertLogged(t, capture, slog.LevelInfo, "evicted oldest")
package shared
