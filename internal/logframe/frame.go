// pattern: Functional Core

package logframe

import (
	"fmt"
	"strings"
)

// Frame is one decoded log record.
type Frame struct {
	Index     uint64
	Timestamp uint64 // target ticks; 0 when the firmware sends none
	Level     string
	Message   string
}

// Display renders the frame on one line: "[<timestamp> ]<LEVEL> <message>".
func (f Frame) Display() string {
	var sb strings.Builder
	if f.Timestamp != 0 {
		fmt.Fprintf(&sb, "%d ", f.Timestamp)
	}
	level := strings.ToUpper(f.Level)
	if level == "" {
		level = "PRINT"
	}
	sb.WriteString(level)
	sb.WriteString(" ")
	sb.WriteString(f.Message)
	return sb.String()
}

// render substitutes args into format. "{}" and "{=type}" consume the next
// argument; "{{" and "}}" are literal braces. Missing arguments render as
// "{?}" and surplus ones are appended.
func render(format string, args []any) string {
	var sb strings.Builder
	next := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case c == '{' && i+1 < len(format) && format[i+1] == '{':
			sb.WriteByte('{')
			i++
		case c == '}' && i+1 < len(format) && format[i+1] == '}':
			sb.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(format[i:], '}')
			if end < 0 {
				sb.WriteString(format[i:])
				return sb.String()
			}
			if next < len(args) {
				sb.WriteString(formatArg(args[next]))
				next++
			} else {
				sb.WriteString("{?}")
			}
			i += end
		default:
			sb.WriteByte(c)
		}
	}
	for ; next < len(args); next++ {
		sb.WriteString(" ")
		sb.WriteString(formatArg(args[next]))
	}
	return sb.String()
}

func formatArg(v any) string {
	switch v := v.(type) {
	case []byte:
		return fmt.Sprintf("%x", v)
	case float32, float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
