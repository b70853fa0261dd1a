package packet

// HeaderSizeLogEntry is the fixed per-packet overhead added to a LogEntry's
// Size(), independent of its string/payload content (§3).
const HeaderSizeLogEntry = 48

// Color is an optional RGBA background color attached to a LogEntry.
type Color struct {
	R, G, B, A uint8
	Set        bool
}

// LogEntry is the workhorse packet variant: a titled, leveled record with an
// optional binary payload (§3).
type LogEntry struct {
	header

	SessionName string
	Title       string
	AppName     string
	HostName    string
	EntryType   LogEntryType
	ViewerID    ViewerID
	Color       Color
	Data        []byte

	TimestampMicros int64
	ThreadID        uint64
	ProcessID       int
}

// NewLogEntry builds a LogEntry at the given level and entry sub-type. The
// caller fills in the remaining fields before handing it to the facade.
func NewLogEntry(level Level, entryType LogEntryType, title string) *LogEntry {
	e := &LogEntry{Title: title, EntryType: entryType}
	e.level = level
	return e
}

func (e *LogEntry) Type() Type { return TypeLogEntry }

func (e *LogEntry) Size() int {
	return HeaderSizeLogEntry +
		stringSize(e.SessionName) +
		stringSize(e.Title) +
		stringSize(e.AppName) +
		stringSize(e.HostName) +
		len(e.Data)
}
