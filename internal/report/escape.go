package report

import (
	"strings"
)

const delimiter = " | "

var escaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, "\n", `\n`)

// escape makes s safe for a single protocol field.
func escape(s string) string {
	return escaper.Replace(s)
}

// joinRow escapes fields and joins them with the column delimiter.
func joinRow(fields ...string) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = escape(f)
	}
	return strings.Join(out, delimiter)
}

// splitRow splits a protocol row on unescaped '|' and unescapes each
// field. The single space on either side of a delimiter is dropped.
func splitRow(line string) []string {
	var fields []string
	var b strings.Builder
	flush := func() {
		f := b.String()
		if len(fields) > 0 {
			f = strings.TrimPrefix(f, " ")
		}
		fields = append(fields, f)
		b.Reset()
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			switch line[i] {
			case 'n':
				b.WriteByte('\n')
			default:
				b.WriteByte(line[i])
			}
		case c == '|':
			s := b.String()
			if strings.HasSuffix(s, " ") {
				b.Reset()
				b.WriteString(s[:len(s)-1])
			}
			flush()
		default:
			b.WriteByte(c)
		}
	}
	flush()
	return fields
}
