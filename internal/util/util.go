//go:build !windows

package util

import "log/slog"

// LaunchedFromDesktop reports whether the process was started by a desktop
// shell rather than a terminal. Only Windows can tell; elsewhere it is false.
func LaunchedFromDesktop(*slog.Logger) bool { return false }

// HideConsole is a no-op outside Windows.
func HideConsole(*slog.Logger) {}
