package utils

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "am": {}, "are": {}, "at": {}, "be": {}, "can": {},
	"do": {}, "for": {}, "from": {}, "get": {}, "has": {}, "have": {}, "i": {}, "im": {},
	"in": {}, "is": {}, "it": {}, "looking": {}, "me": {}, "my": {}, "near": {}, "need": {},
	"of": {}, "on": {}, "or": {}, "please": {}, "some": {}, "something": {}, "that": {},
	"the": {}, "this": {}, "to": {}, "want": {}, "with": {}, "where": {}, "find": {},
}

// NormalizeText lowercases s, drops apostrophes, turns other punctuation into
// spaces and collapses whitespace. Hyphens inside words are kept so that
// "x-ray" and "same-day" survive as single terms.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
			space = false
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.Trim(strings.TrimSpace(b.String()), "-")
}

// Tokenize splits normalized text into words, trimming stray hyphens.
func Tokenize(s string) []string {
	fields := strings.Fields(NormalizeText(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.Trim(f, "-"); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// ContentTokens is Tokenize without stop words.
func ContentTokens(s string) []string {
	tokens := Tokenize(s)
	out := tokens[:0]
	for _, t := range tokens {
		if !IsStopWord(t) {
			out = append(out, t)
		}
	}
	return out
}

// IsStopWord reports whether token carries no search meaning on its own.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// UniqueStrings returns values with duplicates removed, keeping first occurrences.
func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ContainsFold reports whether any element of values equals target ignoring case.
func ContainsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}
