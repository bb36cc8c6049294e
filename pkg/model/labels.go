package model

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// DefaultLabeler turns a field name such as "CsvFile" or "import_file" into a
// title ("Csv File", "Import File"). Upload fields use it when no explicit
// title is supplied.
func DefaultLabeler(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}

	var segments []string
	for _, word := range splitWordsPattern.Split(name, -1) {
		if word == "" {
			continue
		}
		segments = append(segments, titleCase(splitCamel(word)))
	}
	return strings.TrimSpace(strings.Join(segments, " "))
}

func splitCamel(input string) string {
	var (
		out  strings.Builder
		prev rune
	)
	for i, r := range input {
		if i > 0 && isBoundary(prev, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
		prev = r
	}
	return out.String()
}

func isBoundary(prev, r rune) bool {
	return (unicode.IsLower(prev) && unicode.IsUpper(r)) ||
		(unicode.IsLetter(prev) && unicode.IsDigit(r)) ||
		(unicode.IsDigit(prev) && unicode.IsLetter(r))
}

func titleCase(word string) string {
	fields := strings.Fields(word)
	for i, part := range fields {
		lower := strings.ToLower(part)
		first, size := utf8.DecodeRuneInString(lower)
		fields[i] = string(unicode.ToUpper(first)) + lower[size:]
	}
	return strings.Join(fields, " ")
}
