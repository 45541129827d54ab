package timetable

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Patterns shared by the classifier. These encode the cell formats of the
// source spreadsheets, not locale vocabulary, so they live here rather than
// in ClassifierConfig.
var (
	// dateRe matches DD.MM fragments that authors append to cells.
	dateRe = regexp.MustCompile(`\d{2}\.\d{2}`)

	// roomRe matches a 2-4 digit room number with an optional trailing
	// Cyrillic letter. Token boundaries are checked separately because RE2
	// word boundaries are ASCII-only.
	roomRe = regexp.MustCompile(`\d{2,4}[а-яА-Я]?`)

	// initialsRe matches a "Surname I.O." initials tail.
	initialsRe = regexp.MustCompile(`[А-ЯЁ]\.\s?[А-ЯЁ]\.`)

	// timeTokenRe matches one H:MM / H.MM token inside a time-range cell.
	timeTokenRe = regexp.MustCompile(`(\d{1,2})[:.](\d{2})`)

	// groupNumRe extracts the group number from a header cell.
	groupNumRe = regexp.MustCompile(`\d+`)

	// dupSuffixRe strips the " (2)" style disambiguation suffix from a
	// subgroup label, recovering its canonical form.
	dupSuffixRe = regexp.MustCompile(`\s*\(\d+\)$`)
)

// maxRoomLineLen is the longest a normalized line can be (in runes) and
// still classify as a room. Department tags like "ФМиИС" are longer or hold
// no digits.
const maxRoomLineLen = 6

// ClassifierConfig carries the locale-dependent vocabulary used to scrub and
// classify cell text. Defaults target Russian university timetables; swap the
// word lists for other locales without touching the algorithms.
type ClassifierConfig struct {
	// MissingToken is the literal placeholder some exports emit for absent
	// cells, compared case-insensitively.
	MissingToken string

	// StopPhrases discard a whole line when the line starts with one of
	// them (administrative notes, not schedule content).
	StopPhrases []string

	// RankKeywords mark a line as a teacher line (matched as lowercase
	// substrings).
	RankKeywords []string

	// GroupKeyword is the header token naming a group column ("группа").
	GroupKeyword string

	// StreamKeyword is the header token naming a stream row ("поток").
	StreamKeyword string

	// GeneralStreamTitle names the implicit stream when the stream row is
	// blank for a column.
	GeneralStreamTitle string

	// GeneralGroupLabel names the implicit subgroup when a column has no
	// distinct sub-header.
	GeneralGroupLabel string
}

// DefaultClassifierConfig returns the vocabulary for Russian timetables.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MissingToken:       "nan",
		StopPhrases:        []string{"по ", "с ", "занятия", "кураторский", "в т.ч."},
		RankKeywords:       []string{"доцент", "проф", "преп", "ассист"},
		GroupKeyword:       "группа",
		StreamKeyword:      "поток",
		GeneralStreamTitle: "Общий поток",
		GeneralGroupLabel:  "Общая",
	}
}

// Classifier scrubs raw cell text and routes lines to subject, teacher or
// room. It is safe for concurrent use.
type Classifier struct {
	cfg ClassifierConfig
}

// NewClassifier creates a classifier with the given vocabulary.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Config returns the classifier vocabulary.
func (c *Classifier) Config() ClassifierConfig {
	return c.cfg
}

// Normalize scrubs one raw cell value: missing-value tokens map to "", DD.MM
// date fragments are stripped, and lines opening with an administrative stop
// phrase are discarded entirely.
func (c *Classifier) Normalize(raw string) string {
	if raw == "" || strings.EqualFold(raw, c.cfg.MissingToken) {
		return ""
	}
	text := strings.TrimSpace(raw)
	text = strings.TrimSpace(dateRe.ReplaceAllString(text, ""))
	lower := strings.ToLower(text)
	for _, phrase := range c.cfg.StopPhrases {
		if strings.HasPrefix(lower, phrase) {
			return ""
		}
	}
	return text
}

// CanonicalLabel strips the " (2)" disambiguation suffix so content arriving
// from two physical columns of the same logical subgroup merges under one key.
func (c *Classifier) CanonicalLabel(label string) string {
	return dupSuffixRe.ReplaceAllString(label, "")
}

// isTeacherLine reports whether a normalized line names a teacher: an
// academic rank keyword or a "Surname I.O." initials pattern.
func (c *Classifier) isTeacherLine(line string) bool {
	lower := strings.ToLower(line)
	for _, rank := range c.cfg.RankKeywords {
		if strings.Contains(lower, rank) {
			return true
		}
	}
	return initialsRe.MatchString(line)
}

// RoomTokens returns every word-bounded room token (2-4 digits plus an
// optional Cyrillic letter) in s, in order of appearance.
func (c *Classifier) RoomTokens(s string) []string {
	var tokens []string
	for _, loc := range roomRe.FindAllStringIndex(s, -1) {
		if isWordBounded(s, loc[0], loc[1]) {
			tokens = append(tokens, s[loc[0]:loc[1]])
		}
	}
	return tokens
}

// roomToken returns the first word-bounded room token in s, or "".
func (c *Classifier) roomToken(s string) string {
	tokens := c.RoomTokens(s)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// IsSubjectText reports whether normalized content reads as a subject name
// rather than a room annotation: it must contain letters, and short strings
// holding digits (like "402 ГК") are rejected.
func (c *Classifier) IsSubjectText(content string) bool {
	hasLetter := false
	hasDigit := false
	for _, r := range content {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	if !hasLetter {
		return false
	}
	if hasDigit && utf8.RuneCountInString(content) < 10 {
		return false
	}
	return true
}

// isWordBounded reports whether s[start:end] is not embedded in a larger
// alphanumeric run. RE2 \b is ASCII-only, so Cyrillic neighbors are checked
// by hand.
func isWordBounded(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return false
		}
	}
	return true
}
