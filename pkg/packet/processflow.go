package packet

// HeaderSizeProcessFlow is the fixed per-packet overhead added to a
// ProcessFlow's Size() (§3).
const HeaderSizeProcessFlow = 28

// ProcessFlow marks method/thread/process enter and leave events (§3).
type ProcessFlow struct {
	header

	FlowType        ProcessFlowType
	Title           string
	HostName        string
	TimestampMicros int64
	ThreadID        uint64
	ProcessID       int
}

// NewProcessFlow builds a ProcessFlow packet at LevelDebug by default.
func NewProcessFlow(flowType ProcessFlowType, title string) *ProcessFlow {
	p := &ProcessFlow{FlowType: flowType, Title: title}
	p.level = LevelDebug
	return p
}

func (p *ProcessFlow) Type() Type { return TypeProcessFlow }

func (p *ProcessFlow) Size() int {
	return HeaderSizeProcessFlow + stringSize(p.Title) + stringSize(p.HostName)
}
