package logger

// LogEntry is a single event. Exactly one of the event fields is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	SessionStart   *SessionStart   `json:"session_start,omitempty"`
	SessionEnd     *SessionEnd     `json:"session_end,omitempty"`
	RunCommand     *RunCommand     `json:"run_command,omitempty"`
	UnknownCommand *UnknownCommand `json:"unknown_command,omitempty"`
	SyntaxError    *SyntaxError    `json:"syntax_error,omitempty"`
}

// LogType is implemented by every event type.
type LogType interface {
	setOn(le *LogEntry)
}

// GetLogType returns the event held by the entry, or nil.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le.SessionStart != nil:
		return le.SessionStart
	case le.SessionEnd != nil:
		return le.SessionEnd
	case le.RunCommand != nil:
		return le.RunCommand
	case le.UnknownCommand != nil:
		return le.UnknownCommand
	case le.SyntaxError != nil:
		return le.SyntaxError
	}
	return nil
}

// SessionStart is logged once when a shell starts reading commands.
type SessionStart struct {
	// Name is $0: the script path or the shell name.
	Name        string   `json:"name"`
	Args        []string `json:"args,omitempty"`
	Interactive bool     `json:"interactive"`
	Pid         int      `json:"pid"`
}

// SessionEnd is logged when the shell stops.
type SessionEnd struct {
	ExitStatus int `json:"exit_status"`
}

// RunCommand is logged for each command that ran.
type RunCommand struct {
	Command             []string `json:"command"`
	ResolvedCommandPath string   `json:"resolved_command_path,omitempty"`
	Builtin             bool     `json:"builtin,omitempty"`
	ExitStatus          int      `json:"exit_status"`
}

// UnknownCommandStatus says why a command could not be run.
type UnknownCommandStatus string

const (
	StatusNotFound         UnknownCommandStatus = "not_found"
	StatusPermissionDenied UnknownCommandStatus = "permission_denied"
	StatusStartFailed      UnknownCommandStatus = "start_failed"
)

// UnknownCommand is logged when a command name couldn't be resolved to a
// builtin or program.
type UnknownCommand struct {
	Command      []string             `json:"command"`
	Status       UnknownCommandStatus `json:"status"`
	ErrorMessage string               `json:"error_message,omitempty"`
}

// SyntaxError is logged when an input line doesn't parse.
type SyntaxError struct {
	Line  string `json:"line"`
	Error string `json:"error"`
}

func (e *SessionStart) setOn(le *LogEntry)   { le.SessionStart = e }
func (e *SessionEnd) setOn(le *LogEntry)     { le.SessionEnd = e }
func (e *RunCommand) setOn(le *LogEntry)     { le.RunCommand = e }
func (e *UnknownCommand) setOn(le *LogEntry) { le.UnknownCommand = e }
func (e *SyntaxError) setOn(le *LogEntry)    { le.SyntaxError = e }
