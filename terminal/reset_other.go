//go:build !linux

package terminal

// resetTerminalMode has no termios fallback here; the escape sequences sent by
// EmergencyReset are all that is attempted
func resetTerminalMode() {}
