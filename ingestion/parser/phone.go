// Package parser classifies a raw WhatsApp message body into a create, an
// update, or noise. It is intentionally pure and data-only: no
// database, no network, so it is testable in isolation and the pipeline can
// dispatch on its tagged output without reshaping.
package parser

import (
	"regexp"
	"strings"
)

// phoneRe matches a run of 9 digits, tolerating embedded spaces or the
// literal 'x'/'X' placeholder character that local users sometimes type in
// place of a leading zero; it is replaced with '0' before the digit check.
var phoneRe = regexp.MustCompile(`[6xX](?: ?[\dxX]){8}`)

// ExtractPhone finds the first normalised 9-digit run starting with 6
// anywhere in body. Returns "", false if none is found.
func ExtractPhone(body string) (string, bool) {
	_, normalized, ok := extractPhoneMatch(body)
	return normalized, ok
}

// extractPhoneMatch returns both the raw matched substring and its
// normalised form. Callers that also run ExtractAmount over the same body
// need the raw span to exclude it first: a 9-digit phone run satisfies
// amountRe just as well as a real amount token.
func extractPhoneMatch(body string) (raw string, normalized string, ok bool) {
	for _, loc := range phoneRe.FindAllStringIndex(body, -1) {
		if loc[1] < len(body) && body[loc[1]] >= '0' && body[loc[1]] <= '9' {
			continue
		}
		m := body[loc[0]:loc[1]]
		candidate := strings.Map(func(r rune) rune {
			if r == ' ' {
				return -1
			}
			if r == 'x' || r == 'X' {
				return '0'
			}
			return r
		}, m)
		if len(candidate) != 9 {
			continue
		}
		if candidate[0] != '6' {
			continue
		}
		if isAllDigits(candidate) {
			return m, candidate, true
		}
	}
	return "", "", false
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
