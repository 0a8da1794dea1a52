package reader

import (
	"regexp"
	"strings"
	"time"
)

var yyyymmddRe = regexp.MustCompile(`\d{8}`)

// CompilePattern turns a catalog's file_format.pattern — e.g.
// "{sender_id}_{date}_invoices.csv" — into a regular expression that
// matches an actual archive member name, substituting {sender_id} with the
// literal sender ID and {date} with an 8-digit YYYYMMDD matcher (the one
// placeholder form spec.md's examples use; any other brace placeholder is
// treated as a free-form segment matching one or more non-separator
// characters).
func CompilePattern(pattern, senderID string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')
	i := 0
	for i < len(pattern) {
		if pattern[i] == '{' {
			end := strings.IndexByte(pattern[i:], '}')
			if end == -1 {
				b.WriteString(regexp.QuoteMeta(pattern[i:]))
				break
			}
			placeholder := pattern[i+1 : i+end]
			switch placeholder {
			case "sender_id":
				b.WriteString(regexp.QuoteMeta(senderID))
			case "date":
				b.WriteString(`\d{8}`)
			default:
				b.WriteString(`[^/\\]+`)
			}
			i += end + 1
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(pattern[i])))
		i++
	}
	b.WriteByte('$')
	return regexp.Compile(b.String())
}

// ExtractDate looks for the first YYYYMMDD run in name and parses it,
// returning ok=false if none is found or it does not form a valid date.
func ExtractDate(name string) (time.Time, bool) {
	m := yyyymmddRe.FindString(name)
	if m == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102", m)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
