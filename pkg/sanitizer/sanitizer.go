package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reBlankLines = regexp.MustCompile(`\n{3,}`)
	reSpaces     = regexp.MustCompile(`[ \t]+`)
)

func stripControl(keepNewlines bool) Strategy {
	return func(s string) string {
		return strings.Map(func(r rune) rune {
			if r == '\n' && keepNewlines {
				return r
			}
			if r == '\t' {
				return ' '
			}
			if unicode.IsControl(r) {
				return -1
			}
			return r
		}, s)
	}
}

func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(reSpaces.ReplaceAllString(l, " "))
	}
	return strings.Join(lines, "\n")
}

// SanitizeMemo keeps line structure but never more than one blank line in a row.
func SanitizeMemo(input string) string {
	p := Pipeline{
		func(s string) string { return strings.ReplaceAll(s, "\r\n", "\n") },
		stripControl(true),
		trimLines,
		func(s string) string { return reBlankLines.ReplaceAllString(s, "\n\n") },
		strings.TrimSpace,
	}
	return p.Apply(input)
}

// SanitizeIdentifier is for customer, animal and trainer references.
func SanitizeIdentifier(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}

func SanitizeName(input string) string {
	return Pipeline{stripControl(false), TrimAndNormalize}.Apply(input)
}
