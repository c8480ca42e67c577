package parser

import (
	"strings"
)

// Kind tags the three possible message classifications.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindIgnore Kind = "ignore"
)

// UpdateVariant tags the mutation case within an UpdateDelivery output.
type UpdateVariant string

const (
	VariantDelivered UpdateVariant = "delivered"
	VariantCollected UpdateVariant = "collected"
	VariantFailed UpdateVariant = "failed"
	VariantPickup UpdateVariant = "pickup"
	VariantPending UpdateVariant = "pending"
	VariantModifier UpdateVariant = "modifier"
	VariantPhoneChange UpdateVariant = "phone_change"
)

// CreateFields is the extracted output for a CreateDelivery classification.
type CreateFields struct {
	Phone string
	Items string
	AmountDue int64
	Quartier string
	Carrier string
}

// UpdateFields is the extracted output for an UpdateDelivery classification.
// Phone, when present, is the target-resolution phone; for
// VariantPhoneChange it is the *old* phone and NewPhone carries the second.
type UpdateFields struct {
	Variant UpdateVariant
	Phone string
	Amount *int64
	NewItems *string
	NewAmountDue *int64
	NewPhone string
}

// Result is the parser's tagged-union output.
type Result struct {
	Kind Kind
	Create *CreateFields
	Update *UpdateFields
}

// Parse classifies a trimmed UTF-8 body: the update grammar is
// tried first (update wins over a create-shaped body that also contains an
// update keyword), then the create grammar, else Ignore.
func Parse(body string) Result {
	body = strings.TrimSpace(body)
	if body == "" {
		return Result{Kind: KindIgnore}
	}

	if upd, ok := parseUpdate(body); ok {
		return Result{Kind: KindUpdate, Update: upd}
	}
	if create, ok := parseCreate(body); ok {
		return Result{Kind: KindCreate, Create: create}
	}
	return Result{Kind: KindIgnore}
}

// fold lower-cases and strips the accented characters that appear in the
// French trigger words, so matching stays case-insensitive and accent-insensitive.
var accentReplacer = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"à", "a", "â", "a",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c",
)

func fold(s string) string {
	return accentReplacer.Replace(strings.ToLower(s))
}

// excludeSpan blanks out the first occurrence of raw in body so a
// subsequent amountRe scan cannot re-match the same digit run (e.g. a
// target-resolution phone number) as the paid/due amount. A no-op when raw
// is empty.
func excludeSpan(body, raw string) string {
	if raw == "" {
		return body
	}
	return strings.Replace(body, raw, " ", 1)
}

func parseUpdate(body string) (*UpdateFields, bool) {
	folded := fold(body)

	switch {
	case strings.Contains(folded, "changer numero"):
		return parsePhoneChange(body)

	case strings.Contains(folded, "modifier:"):
		return parseModifier(body)

	case strings.Contains(folded, "collecte") || strings.Contains(folded, "collect"):
		phoneRaw, phone, _ := extractPhoneMatch(body)
		amount, ok := ExtractAmount(excludeSpan(body, phoneRaw))
		if !ok {
			return nil, false
		}
		return &UpdateFields{Variant: VariantCollected, Phone: phone, Amount: &amount}, true

	case strings.Contains(folded, "livre"):
		phoneRaw, phone, _ := extractPhoneMatch(body)
		fields := &UpdateFields{Variant: VariantDelivered, Phone: phone}
		if amount, ok := ExtractAmount(excludeSpan(body, phoneRaw)); ok {
			fields.Amount = &amount
		}
		return fields, true

	case strings.Contains(folded, "echec") || strings.Contains(folded, "numero ne passe pas"):
		phone, _ := ExtractPhone(body)
		return &UpdateFields{Variant: VariantFailed, Phone: phone}, true

	case strings.Contains(folded, "pickup") || strings.Contains(folded, "ramassage") || strings.Contains(folded, "elle passe chercher"):
		phone, _ := ExtractPhone(body)
		return &UpdateFields{Variant: VariantPickup, Phone: phone}, true

	case strings.Contains(folded, "en attente"):
		phone, _ := ExtractPhone(body)
		return &UpdateFields{Variant: VariantPending, Phone: phone}, true
	}

	return nil, false
}

func parseModifier(body string) (*UpdateFields, bool) {
	folded := fold(body)
	idx := strings.Index(folded, "modifier:")
	remainder := strings.TrimSpace(body[idx+len("modifier:"):])
	if remainder == "" {
		return nil, false
	}

	phone, _ := ExtractPhone(body)
	fields := &UpdateFields{Variant: VariantModifier, Phone: phone}

	if amount, ok := ExtractAmount(remainder); ok {
		fields.NewAmountDue = &amount
		remainder = removeFirstAmountToken(remainder)
	}
	remainder = strings.TrimSpace(remainder)
	if remainder != "" {
		fields.NewItems = &remainder
	}
	if fields.NewAmountDue == nil && fields.NewItems == nil {
		return nil, false
	}
	return fields, true
}

func removeFirstAmountToken(s string) string {
	loc := amountRe.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return strings.TrimSpace(s[:loc[0]] + " " + s[loc[1]:])
}

func parsePhoneChange(body string) (*UpdateFields, bool) {
	phones := phoneRe.FindAllString(body, -1)
	normalized := make([]string, 0, 2)
	for _, p := range phones {
		n := normalizeCandidate(p)
		if n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) < 2 {
		return nil, false
	}
	return &UpdateFields{Variant: VariantPhoneChange, Phone: normalized[0], NewPhone: normalized[1]}, true
}

func normalizeCandidate(m string) string {
	candidate := strings.Map(func(r rune) rune {
		if r == ' ' {
			return -1
		}
		if r == 'x' || r == 'X' {
			return '0'
		}
		return r
	}, m)
	if len(candidate) != 9 || candidate[0] != '6' || !isAllDigits(candidate) {
		return ""
	}
	return candidate
}

// parseCreate implements the Format A (positional) and Format B
// (free-order) create grammars.
func parseCreate(body string) (*CreateFields, bool) {
	var lines []string
	for _, l := range strings.Split(body, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 4 {
		return nil, false
	}

	if fields, ok := parseFormatA(lines); ok {
		return fields, true
	}
	return parseFormatB(lines)
}

// parseFormatA requires line 1 = phone, line 2 = items, line 3 = amount,
// line 4 = quartier, in that order.
func parseFormatA(lines []string) (*CreateFields, bool) {
	phone := normalizeCandidate(lines[0])
	if phone == "" {
		return nil, false
	}
	amount, ok := ExtractAmount(lines[2])
	if !ok {
		return nil, false
	}
	fields := &CreateFields{Phone: phone, Items: lines[1], AmountDue: amount, Quartier: lines[3]}
	if len(lines) > 4 && IsKnownCarrier(lines[len(lines)-1]) {
		fields.Carrier = lines[len(lines)-1]
	}
	return fields, true
}

// parseFormatB requires exactly one phone line, exactly one amount line,
// one quartier line among the rest, and joins every other line with " + ".
func parseFormatB(lines []string) (*CreateFields, bool) {
	var phoneIdx, amountIdx, quartierIdx = -1, -1, -1
	var phone string
	var amount int64

	for i, l := range lines {
		if p := normalizeCandidate(l); p != "" {
			if phoneIdx != -1 {
				return nil, false
			}
			phoneIdx, phone = i, p
			continue
		}
		if a, ok := ExtractAmount(l); ok && looksLikeAmountLine(l) {
			if amountIdx != -1 {
				return nil, false
			}
			amountIdx, amount = i, a
			continue
		}
		if quartierIdx == -1 && IsKnownQuartier(l) {
			quartierIdx = i
		}
	}
	if phoneIdx == -1 || amountIdx == -1 {
		return nil, false
	}

	var quartier string
	var itemLines []string
	for i, l := range lines {
		switch i {
		case phoneIdx, amountIdx:
			continue
		case quartierIdx:
			quartier = l
		default:
			itemLines = append(itemLines, l)
		}
	}

	fields := &CreateFields{Phone: phone, AmountDue: amount, Quartier: quartier}
	stripTrailingCarrier(fields, itemLines)
	if fields.Items == "" {
		fields.Items = strings.Join(itemLines, " + ")
	}
	return fields, true
}

// looksLikeAmountLine rejects a phone-shaped line from being double-counted
// as an amount: Format B's single amount line should not be the same line
// already claimed as the phone.
func looksLikeAmountLine(l string) bool {
	return normalizeCandidate(l) == ""
}

// stripTrailingCarrier removes a trailing carrier-name line from items and
// records it separately.
func stripTrailingCarrier(fields *CreateFields, lines []string) {
	if len(lines) == 0 {
		return
	}
	last := lines[len(lines)-1]
	if IsKnownCarrier(last) {
		fields.Carrier = last
		lines = lines[:len(lines)-1]
	}
	fields.Items = strings.Join(lines, " + ")
}
