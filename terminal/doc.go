// Package terminal provides direct ANSI terminal output for cellforge frames.
//
// Features:
//   - True color (24-bit) and 256-color palette support
//   - Frame-buffered output with cell-level diffing against the last flush
//   - Relative cursor motion and incremental SGR updates
//   - SIGWINCH resize detection
//   - Clean terminal restoration on exit/panic
//
// This package bypasses terminfo/termcap entirely, emitting direct ANSI sequences.
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal
