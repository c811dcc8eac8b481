package domain

import "strings"

// Stage is a step of the inheritance pipeline, recorded as one telemetry vertex.
type Stage string

const (
	// StageRead loads the root and member manifests.
	StageRead Stage = "read"
	// StageAggregate counts dependency occurrences.
	StageAggregate Stage = "aggregate"
	// StageSelect applies the threshold and resolves versions.
	StageSelect Stage = "select"
	// StageRewrite mutates the manifest trees.
	StageRewrite Stage = "rewrite"
	// StageWrite persists the changed manifests.
	StageWrite Stage = "write"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{StageRead, StageAggregate, StageSelect, StageRewrite, StageWrite}

// ParseStage converts a string to a Stage, reporting whether it is known.
func ParseStage(s string) (Stage, bool) {
	for _, st := range Stages {
		if string(st) == strings.ToLower(s) {
			return st, true
		}
	}
	return "", false
}

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
