// Package packet defines the typed log records ("packets") that flow from a
// session through the facade to one or more protocols.
package packet

// Level is the severity of a packet. Lower values are less severe.
//
// LevelControl is reserved: only ControlCommand packets carry it, and a
// protocol's backlog.flushon comparison treats it specially (§4.9 — a
// control command never triggers or is subject to a backlog flush).
type Level int

const (
	LevelDebug Level = iota
	LevelVerbose
	LevelMessage
	LevelWarning
	LevelError
	LevelFatal
	LevelControl
)

// String renders the level the way pattern formatters and config parsing
// expect (lowercase keyword form).
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelVerbose:
		return "verbose"
	case LevelMessage:
		return "message"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	case LevelControl:
		return "control"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level keyword, case-insensitively. ok is false for any
// input that isn't one of the recognized keywords; callers fall back to a
// default per §4.1 (typed readers are total functions).
func ParseLevel(s string) (level Level, ok bool) {
	switch lower(s) {
	case "debug":
		return LevelDebug, true
	case "verbose":
		return LevelVerbose, true
	case "message":
		return LevelMessage, true
	case "warning":
		return LevelWarning, true
	case "error":
		return LevelError, true
	case "fatal":
		return LevelFatal, true
	case "control":
		return LevelControl, true
	default:
		return LevelDebug, false
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// LogEntryType is the LogEntry sub-type enumeration (§3). Numeric values are
// this implementation's own canonical numbering — see DESIGN.md "Open
// Question decisions" for why upstream values could not be recovered from
// the retrieval pack.
type LogEntryType int

const (
	LogEntrySeparator LogEntryType = iota
	LogEntryEnterMethod
	LogEntryLeaveMethod
	LogEntryResetCallstack
	LogEntryMessage
	LogEntryWarning
	LogEntryError
	LogEntryInternalError
	LogEntryComment
	LogEntryVariableValue
	LogEntryCheckpoint
	LogEntryDebug
	LogEntryVerbose
	LogEntryFatal
	LogEntryConditional
	LogEntryAssert
	LogEntryText
	LogEntryBinary
	LogEntryGraphic
	LogEntrySource
	LogEntryObject
	LogEntryWebContent
	LogEntrySystem
	LogEntryMemoryStatistic
	LogEntryDatabaseResult
	LogEntryDatabaseStructure
)

// ViewerID tells a console consumer how to render a LogEntry's payload.
type ViewerID int

const (
	ViewerNone ViewerID = iota
	ViewerTitle
	ViewerData
	ViewerList
	ViewerValueList
	ViewerInspector
	ViewerTable
	ViewerWebDocument
	ViewerBinary
	ViewerGraphic
	ViewerSource
	ViewerHTML
)

// ControlCommandType is the ControlCommand sub-type enumeration (§3).
type ControlCommandType int

const (
	ControlClearLog ControlCommandType = iota
	ControlClearWatches
	ControlClearAutoViews
	ControlClearAll
	ControlClearProcessFlow
)

// WatchType is the Watch variable-type enumeration (§3).
type WatchType int

const (
	WatchString WatchType = iota
	WatchInteger
	WatchFloat
	WatchBoolean
	WatchChar
	WatchAddress
	WatchTimestamp
	WatchObject
)

// ProcessFlowType is the ProcessFlow sub-type enumeration (§3).
type ProcessFlowType int

const (
	ProcessFlowEnterMethod ProcessFlowType = iota
	ProcessFlowLeaveMethod
	ProcessFlowEnterThread
	ProcessFlowLeaveThread
	ProcessFlowEnterProcess
	ProcessFlowLeaveProcess
)
