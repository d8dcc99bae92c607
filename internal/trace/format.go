package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Format is the output encoding of trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path
	FormatText                 // human-readable lines
	FormatNDJSON               // one JSON object per line
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	if f, ok := formatNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

var formatNames = map[string]Format{
	"":       FormatAuto,
	"auto":   FormatAuto,
	"text":   FormatText,
	"ndjson": FormatNDJSON,
	"json":   FormatNDJSON,
}

// FormatEvent encodes ev, newline terminated.
func FormatEvent(ev Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

const jsonTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatNDJSON(ev Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format(jsonTimeLayout),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		return []byte(fmt.Sprintf("{\"kind\":\"error\",\"detail\":%q}\n", err.Error()))
	}
	return append(data, '\n')
}

// formatText renders "[seq] <mark> name (detail) {k=v, ...}", nested
// events indented by two spaces.
func formatText(ev Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%6d] ", ev.Seq)
	if ev.ParentID > 0 {
		sb.WriteString("  ")
	}
	sb.WriteString(ev.Kind.mark())
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		pairs := make([]string, 0, len(ev.Extra))
		for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			pairs = append(pairs, k+"="+ev.Extra[k])
		}
		fmt.Fprintf(&sb, " {%s}", strings.Join(pairs, ", "))
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
