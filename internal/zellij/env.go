package zellij

import "os"

// activeSessionNameEnv reads the active zellij session name from the
// environment, exactly as the multiplexer itself exports it to processes
// running inside a session.
func activeSessionNameEnv() string {
	return os.Getenv("ZELLIJ_SESSION_NAME")
}
