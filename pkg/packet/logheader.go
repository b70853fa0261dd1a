package packet

// HeaderSizeLogHeader is the fixed per-packet overhead for a LogHeader. Like
// ControlCommand, the spec leaves this unspecified; this implementation picks
// 0 (the content is entirely the key=value metadata string).
const HeaderSizeLogHeader = 0

// LogHeader carries key=value metadata (host-name, app-name) emitted on
// successful connect of transports that care (§3).
type LogHeader struct {
	header

	AppName  string
	HostName string
}

// NewLogHeader builds a LogHeader at LevelDebug (LogHeader packets are never
// level-filtered in practice, but every packet needs a level for Size()'s
// shared contract and backlog bookkeeping).
func NewLogHeader(appName, hostName string) *LogHeader {
	h := &LogHeader{AppName: appName, HostName: hostName}
	h.level = LevelDebug
	return h
}

func (h *LogHeader) Type() Type { return TypeLogHeader }

// Content renders the `key=value\r\n` metadata block a transport writes on
// connect.
func (h *LogHeader) Content() string {
	return "hostname=" + h.HostName + "\r\n" + "appname=" + h.AppName + "\r\n"
}

func (h *LogHeader) Size() int {
	return HeaderSizeLogHeader + stringSize(h.Content())
}
