package history

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	entityPattern = regexp.MustCompile(`&#([0-9]+|[xX][0-9a-fA-F]+);`)
)

// Sanitize strips HTML tags and decodes numeric character references.
func Sanitize(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(decodeEntities(s))
}

// decodeEntities replaces numeric references with their runes. Adjacent
// UTF-16 surrogate references are combined; a lone surrogate or an
// out-of-range reference is left as written.
func decodeEntities(s string) string {
	locs := entityPattern.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for i := 0; i < len(locs); i++ {
		start, end := locs[i][0], locs[i][1]
		b.WriteString(s[last:start])
		last = end

		r, ok := entityRune(s[locs[i][2]:locs[i][3]])
		switch {
		case !ok:
			b.WriteString(s[start:end])
		case utf16.IsSurrogate(r):
			if i+1 < len(locs) && locs[i+1][0] == end {
				if low, ok := entityRune(s[locs[i+1][2]:locs[i+1][3]]); ok {
					if pair := utf16.DecodeRune(r, low); pair != unicode.ReplacementChar {
						b.WriteRune(pair)
						last = locs[i+1][1]
						i++
						continue
					}
				}
			}
			b.WriteString(s[start:end])
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(s[last:])
	return b.String()
}

// entityRune parses the decimal or x-prefixed hex body of a reference.
func entityRune(ref string) (rune, bool) {
	var (
		n   int64
		err error
	)
	if ref[0] == 'x' || ref[0] == 'X' {
		n, err = strconv.ParseInt(ref[1:], 16, 32)
	} else {
		n, err = strconv.ParseInt(ref, 10, 32)
	}
	if err != nil || n <= 0 || n > unicode.MaxRune {
		return 0, false
	}
	return rune(n), true
}

// Terminate makes s end with "." or "。", appending "..." otherwise.
// Empty input becomes "...".
func Terminate(s string) string {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "。") {
		return s
	}
	return s + "..."
}

func eventType(raw string) EventType {
	switch EventType(strings.ToLower(strings.TrimSpace(raw))) {
	case Birth:
		return Birth
	case Death:
		return Death
	default:
		return Other
	}
}

// yearValue compares years numerically. Unparseable years sort last.
func yearValue(y string) int {
	n, err := strconv.Atoi(strings.TrimSpace(y))
	if err != nil {
		return math.MaxInt
	}
	return n
}

// SortByYear orders events by ascending numeric year, keeping upstream
// order among equal years.
func SortByYear(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Compare(yearValue(a.Year), yearValue(b.Year))
	})
}

func normalizeEvent(raw RawEvent, date string) Event {
	return Event{
		Title:       Sanitize(raw.Title.String()),
		Year:        strings.TrimSpace(raw.Year.String()),
		Date:        date,
		Description: Terminate(Sanitize(raw.Desc.String())),
		EventType:   eventType(raw.Type.String()),
		Link:        strings.TrimSpace(raw.Link.String()),
	}
}
