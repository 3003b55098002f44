// Package extraction turns recognized free text into structured ID fields and
// hosts the worker that drives the asynchronous text-recognition pass.
package extraction

import (
	"regexp"
	"strings"

	"github.com/pasecure/idverify/constants"
)

// Fields holds whatever the heuristic parser could pull out of the recognized
// text. A nil field means no stage produced a usable value, which is a valid
// outcome, not an error.
type Fields struct {
	IDType     *constants.IDType
	IDNumber   *string
	HolderName *string
}

var (
	// "Name" frequently comes back as "Narne" (rn read for m).
	misreadNameRe = regexp.MustCompile(`(?i)\bnarne\b`)
	spaceRunRe    = regexp.MustCompile(`[ \t]+`)

	seniorMarkerRe = regexp.MustCompile(`(?i)senior\s*citizen|citizens?\s*affairs|\bOSCA\b`)
	pwdMarkerRe    = regexp.MustCompile(`(?i)persons?\s*with\s*disabilit|\bPWD\b`)

	// Ordered most specific first; the first qualifying match wins.
	idNumberRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ID\s*No\.?:?\s*([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)ID\s*Number[:\s]+([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)\bID[:\s]+([A-Z0-9-]{4,})`),
		regexp.MustCompile(`(?m)^\s*([0-9]{4,})\s*$`),
	}
	idNumberStripRe = regexp.MustCompile(`[^0-9-]`)

	nameLabelRe    = regexp.MustCompile(`(?i)\bname\b\s*[:.]?\s*(.*)$`)
	nameValueRe    = regexp.MustCompile(`^[A-Z][A-Za-z .',-]{2,}$`)
	nameLineRe     = regexp.MustCompile(`^[A-Z][A-Za-z .',-]{5,}$`)
	trailingJunkRe = regexp.MustCompile(`[-\s.,']+$`)
)

// nameDenylist holds boilerplate tokens that disqualify a candidate line even
// when it is shaped like a name.
var nameDenylist = map[string]struct{}{
	"republic":    {},
	"office":      {},
	"pasig":       {},
	"city":        {},
	"philippines": {},
	"date":        {},
	"id":          {},
	"no":          {},
	"address":     {},
	"senior":      {},
	"citizen":     {},
	"citizens":    {},
	"affairs":     {},
	"birthday":    {},
	"signature":   {},
}

// Parse runs the full heuristic pipeline over raw recognized text.
func Parse(text string) Fields {
	norm := Normalize(text)
	return Fields{
		IDType:     DetectIDType(norm),
		IDNumber:   ExtractIDNumber(norm),
		HolderName: ExtractHolderName(norm),
	}
}

// Normalize repairs known recognition substitutions, strips the underscore
// placeholders printed on blank form fields, and collapses whitespace runs.
// Line structure is preserved; the later stages are line-oriented.
func Normalize(text string) string {
	text = misreadNameRe.ReplaceAllString(text, "Name")
	text = strings.ReplaceAll(text, "_", "")
	text = strings.ReplaceAll(text, "\r", "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
	}
	return strings.Join(lines, "\n")
}

// DetectIDType matches agency and keyword markers in order; the first match
// wins and no match leaves the type unknown.
func DetectIDType(text string) *constants.IDType {
	if seniorMarkerRe.MatchString(text) {
		t := constants.IDTypeSeniorCitizen
		return &t
	}
	if pwdMarkerRe.MatchString(text) {
		t := constants.IDTypePWD
		return &t
	}
	return nil
}

// ExtractIDNumber tries the ID patterns from most to least specific. The
// first match is stripped down to digits and hyphens; results shorter than 4
// characters are rejected and the search continues.
func ExtractIDNumber(text string) *string {
	for _, re := range idNumberRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		cleaned := idNumberStripRe.ReplaceAllString(m[1], "")
		if len(cleaned) < 4 {
			continue
		}
		return &cleaned
	}
	return nil
}

// ExtractHolderName runs three ordered stages, each only when the previous
// produced nothing: a value on the Name label's own line, a name-shaped line
// within two lines below a label, and finally any name-shaped line at all.
func ExtractHolderName(text string) *string {
	lines := strings.Split(text, "\n")

	// Stage 1: label-anchored value on the same line.
	for _, line := range lines {
		m := nameLabelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if name := cleanName(m[1]); name != "" && nameValueRe.MatchString(name) &&
			tokensAllowed(name, 1, 6) {
			return &name
		}
	}

	// Stage 2: label found but its line held no value; scan the next two lines.
	for i, line := range lines {
		if !nameLabelRe.MatchString(line) {
			continue
		}
		for j := i + 1; j <= i+2 && j < len(lines); j++ {
			if name := nameShapedLine(lines[j]); name != "" {
				return &name
			}
		}
		break
	}

	// Stage 3: unanchored fallback over every line.
	for _, line := range lines {
		if name := nameShapedLine(line); name != "" {
			return &name
		}
	}
	return nil
}

// nameShapedLine returns the cleaned line when it looks like a holder name:
// 2-6 tokens, name-shaped characters, nothing from the denylist.
func nameShapedLine(line string) string {
	name := cleanName(line)
	if name == "" || !nameLineRe.MatchString(name) {
		return ""
	}
	if !tokensAllowed(name, 2, 6) {
		return ""
	}
	return name
}

func tokensAllowed(name string, minTokens, maxTokens int) bool {
	tokens := strings.Fields(name)
	if len(tokens) < minTokens || len(tokens) > maxTokens {
		return false
	}
	for _, tok := range tokens {
		key := strings.ToLower(strings.Trim(tok, ".,'-"))
		if _, bad := nameDenylist[key]; bad {
			return false
		}
	}
	return true
}

// cleanName trims trailing punctuation and dashes and collapses internal
// whitespace.
func cleanName(s string) string {
	s = trailingJunkRe.ReplaceAllString(strings.TrimSpace(s), "")
	return spaceRunRe.ReplaceAllString(s, " ")
}
