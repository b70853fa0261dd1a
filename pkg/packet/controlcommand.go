package packet

// HeaderSizeControlCommand is the fixed per-packet overhead for a
// ControlCommand. The spec leaves this value unspecified (only LogEntry,
// Watch, and ProcessFlow headers are given sizes in §3); this implementation
// picks 8 bytes (sub-type tag + payload length) rather than leaving it
// undefined.
const HeaderSizeControlCommand = 8

// ControlCommand carries session-management directives (clear log, clear
// watches, …). Its level is always the reserved LevelControl (§3).
type ControlCommand struct {
	header

	CommandType ControlCommandType
	Data        []byte
}

// NewControlCommand builds a ControlCommand. Level is always LevelControl.
func NewControlCommand(cmdType ControlCommandType) *ControlCommand {
	c := &ControlCommand{CommandType: cmdType}
	c.level = LevelControl
	return c
}

func (c *ControlCommand) Type() Type { return TypeControlCommand }

func (c *ControlCommand) Size() int {
	return HeaderSizeControlCommand + len(c.Data)
}
