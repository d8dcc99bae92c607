package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{"unknown", "begin", "end", "point", "heartbeat"}

// kindMarks prefix text lines; index 0 covers unknown kinds.
var kindMarks = [...]string{"", "→ ", "← ", "• ", "♡ "}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

func (k Kind) mark() string {
	if int(k) < len(kindMarks) {
		return kindMarks[k]
	}
	return ""
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1
	ScopePass
	ScopeItem
)

var scopeNames = [...]string{"unknown", "driver", "pass", "item"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string // e.g. "module-ids", "chunk-ids", "restore"
	Detail   string
	Extra    map[string]string
}
