// Package constants provides centralized constant values used throughout forja.
// This package is the single source of truth for shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory and file names used by forja.
const (
	// ForjaHome is the hidden directory where forja keeps its data, both in the
	// user's home directory (global config, logs) and in a project (config, db).
	ForjaHome = ".forja"

	// ConfigFileName is the name of the YAML configuration file.
	ConfigFileName = "config.yaml"

	// DatabaseFileName is the SQLite project database inside ForjaHome.
	DatabaseFileName = "forja.db"

	// LockFileName is the project write lock, next to the database.
	LockFileName = "forja.lock"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// CLILogFileName is the rotating CLI log file inside LogsDir.
	CLILogFileName = "forja.log"
)

// Log rotation settings for the CLI log file.
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 5
	LogMaxAgeDays = 30
	LogCompress   = true
)

// Gateway defaults.
const (
	// DefaultCompletionTimeout bounds a single capability call.
	DefaultCompletionTimeout = 2 * time.Minute

	// DefaultCapability is the capability id used when none is requested.
	DefaultCapability = "primary"

	// DefaultAlternateCapability is the fallback used on quota errors.
	DefaultAlternateCapability = "alternate"
)

// Presentation defaults.
const (
	// DefaultTitleWidth is the display width instructions are truncated to
	// when they become a page title.
	DefaultTitleWidth = 60

	// DefaultServerAddr is the listen address for `forja serve`.
	DefaultServerAddr = "127.0.0.1:7331"

	// DefaultServerReadTimeout bounds reading a request from a client.
	DefaultServerReadTimeout = 30 * time.Second
)

// Sender values of chat messages.
const (
	SenderAI   = "ai"
	SenderUser = "user"
)
