package conversation

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/insureassist/backend/internal/model/conversation"
)

// Answers are free text; capture functions pull the structured value out of
// them. Unparseable answers leave the field untouched, which later scores
// as neutral risk.

func captureAge(req *conversation.Requirement, text string) {
	if age, ok := parseLeadingInt(text); ok {
		req.Age = &age
	}
}

func captureGender(req *conversation.Requirement, text string) {
	req.Gender = strings.TrimSpace(text)
}

func captureOccupation(req *conversation.Requirement, text string) {
	req.Occupation = strings.TrimSpace(text)
}

func captureHealth(req *conversation.Requirement, text string) {
	req.HealthConditions = parseTags(text)
}

// parseLeadingInt extracts the first run of digits, so "34 years old"
// parses as 34.
func parseLeadingInt(text string) (int, bool) {
	start := -1
	for i, r := range text {
		if unicode.IsDigit(r) {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			break
		}
	}
	if start == -1 {
		return 0, false
	}
	end := start
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(text[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// negations are whole answers that mean "nothing to report".
var negations = map[string]bool{
	"":        true,
	"no":      true,
	"none":    true,
	"nothing": true,
	"nope":    true,
	"n/a":     true,
	"na":      true,
}

// parseTags splits a free-text enumeration ("diabetes, hypertension and
// asthma") into lowercase tags. Answers meaning "none" yield an empty set.
func parseTags(text string) []string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if negations[normalized] {
		return nil
	}

	normalized = strings.ReplaceAll(normalized, " and ", ",")
	parts := strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ',' || r == ';'
	})

	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" && !negations[tag] {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
