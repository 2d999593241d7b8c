package exports

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/libertyplace/rentapp/internal/models"
)

const Placeholder = "Not provided"

func display(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	return s
}

func formatDate(d models.Date) string {
	t, ok := d.Time()
	if !ok {
		return Placeholder
	}
	return t.Format("01/02/2006")
}

// formatMoney prints whole amounts without cents. grouped inserts thousands
// separators.
func formatMoney(m models.Money, grouped bool) string {
	v, ok := m.Float64()
	if !ok {
		return Placeholder
	}

	neg := v < 0
	v = math.Abs(v)

	var num string
	if v == math.Trunc(v) {
		num = strconv.FormatFloat(v, 'f', 0, 64)
	} else {
		num = strconv.FormatFloat(v, 'f', 2, 64)
	}
	if grouped {
		num = groupThousands(num)
	}
	if neg {
		return "-$" + num
	}
	return "$" + num
}

func groupThousands(num string) string {
	intPart, frac, hasFrac := strings.Cut(num, ".")
	if len(intPart) <= 3 {
		return num
	}

	var sb strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		sb.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		sb.WriteByte('.')
		sb.WriteString(frac)
	}
	return sb.String()
}

// maskAccount keeps the last four characters of an account number.
func maskAccount(num string) string {
	num = strings.TrimSpace(num)
	if num == "" {
		return Placeholder
	}
	n := utf8.RuneCountInString(num)
	if n <= 4 {
		return num
	}
	r := []rune(num)
	return "****" + string(r[n-4:])
}

func yesNo(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return "Yes"
	case "no", "n", "false":
		return "No"
	default:
		return display(s)
	}
}

// wrapText breaks s into lines of at most width runes, splitting on
// whitespace and hard breaking words longer than a line.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	if width < 1 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	var cur []rune
	for _, w := range words {
		word := []rune(w)
		for len(word) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = cur[:0]
			}
			lines = append(lines, string(word[:width]))
			word = word[width:]
		}
		if len(word) == 0 {
			continue
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, word...)
		case len(cur)+1+len(word) <= width:
			cur = append(cur, ' ')
			cur = append(cur, word...)
		default:
			lines = append(lines, string(cur))
			cur = append(cur[:0], word...)
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

// printable swaps runes the embedded fonts cannot draw for '?'.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case r < 0x20 || (r >= 0x7F && r < 0xA0):
			return -1
		case r <= 0x24F:
			return r
		case r >= 0x2000 && r <= 0x206F:
			return r
		case unicode.Is(unicode.Greek, r) || unicode.Is(unicode.Cyrillic, r):
			return r
		default:
			return '?'
		}
	}, s)
}
