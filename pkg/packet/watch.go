package packet

// HeaderSizeWatch is the fixed per-packet overhead added to a Watch's
// Size() (§3).
const HeaderSizeWatch = 20

// Watch records a named variable's current string-form value (§3).
type Watch struct {
	header

	Name            string
	Value           string
	VariableType    WatchType
	TimestampMicros int64
}

// NewWatch builds a Watch packet at LevelDebug by default; callers may
// SetLevel to override.
func NewWatch(name, value string, varType WatchType) *Watch {
	w := &Watch{Name: name, Value: value, VariableType: varType}
	w.level = LevelDebug
	return w
}

func (w *Watch) Type() Type { return TypeWatch }

func (w *Watch) Size() int {
	return HeaderSizeWatch + stringSize(w.Name) + stringSize(w.Value)
}
