package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// amountRe matches <digits>[kK]? or <digits>[.,]<digits>.
var amountRe = regexp.MustCompile(`\b(\d[\d.,]*\d|\d)([kK])?\b`)

const MinAmount = 100

// ExtractAmount finds the first valid amount token in body and returns its
// value in integer minor units. A token below MinAmount does not count as a
// match and parsing continues to the next candidate.
func ExtractAmount(body string) (int64, bool) {
	for _, m := range amountRe.FindAllStringSubmatch(body, -1) {
		digits := strings.NewReplacer(" ", "", ".", "", ",", "").Replace(m[1])
		if digits == "" {
			continue
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		if strings.EqualFold(m[2], "k") {
			n *= 1000
		}
		if n < MinAmount {
			continue
		}
		return n, true
	}
	return 0, false
}
