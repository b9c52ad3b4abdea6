// Package parser extracts task fields from a single line of user input.
//
// The command surface is small and fixed, so extraction works on the raw line
// and its space-separated tokens rather than through a general grammar:
//
//	todo <description>
//	deadline <description> /by dd/mm/yyyy
//	event <description> /at dd/mm/yyyy
//	find <keyword>
//	update <n> [description] [/by|/at dd/mm/yyyy]
//	mark|unmark|delete <n>
//
// The caller picks the extraction methods that match the leading keyword.
// Every failure is returned as an *Error whose Kind is one of the Err values
// declared in this package and whose Message can be shown to the user as is.
package parser

import (
	"strconv"
	"strings"
	"time"
)

// Date clause markers.
const (
	MarkerBy = "/by"
	MarkerAt = "/at"
)

// DateLayout is the only accepted date format (dd/mm/yyyy).
const DateLayout = "02/01/2006"

// dateOffset skips the marker and the single space after it.
const dateOffset = 4

const (
	msgEmptyInput        = "You didn't say anything dummy!"
	msgInvalidTaskNumber = "Give me a proper task number dummy!"
	msgEmptyTodo         = "Description of a todo cannot be empty dummy!"
	msgEmptyDeadline     = "Description of a deadline cannot be empty dummy!"
	msgEmptyEvent        = "Description of an event cannot be empty dummy!"
	msgEmptyUpdate       = "An update needs to have a new description dummy!"
	msgMissingBy         = "A deadline must have a by clause dummy!"
	msgMissingAt         = "An event must have a at clause dummy!"
	msgBadDate           = "Your date format is incorrect dummy! Use dd/mm/yyyy."
	msgEmptyKeyword      = "You need to type in a keyword to find!!"
)

// Parser holds one input line. Create a new Parser for every line.
type Parser struct {
	line   string
	tokens []string
}

// New returns a Parser for line.
func New(line string) *Parser {
	return &Parser{
		line:   line,
		tokens: splitTokens(line),
	}
}

// Line returns the raw input line.
func (p *Parser) Line() string {
	return p.line
}

// Tokens returns a copy of the space-separated tokens of the line.
func (p *Parser) Tokens() []string {
	out := make([]string, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// splitTokens splits on single spaces and drops trailing empty tokens, so
// "a  b" yields ["a", "", "b"] and "a b " yields ["a", "b"].
func splitTokens(line string) []string {
	parts := strings.Split(line, " ")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// FirstToken returns the token before the first space.
func (p *Parser) FirstToken() (string, error) {
	if strings.TrimSpace(p.line) == "" || len(p.tokens) == 0 {
		return "", newError(ErrEmptyInput, msgEmptyInput)
	}
	return p.tokens[0], nil
}

// TaskNumber returns the second token as a positive integer.
func (p *Parser) TaskNumber() (int, error) {
	if len(p.tokens) < 2 || !isDigits(p.tokens[1]) {
		return 0, newError(ErrInvalidTaskNumber, msgInvalidTaskNumber)
	}
	n, err := strconv.Atoi(p.tokens[1])
	if err != nil || n < 1 {
		return 0, newError(ErrInvalidTaskNumber, msgInvalidTaskNumber)
	}
	return n, nil
}

// TodoDescription returns the text after the first space.
func (p *Parser) TodoDescription() (string, error) {
	space := strings.Index(p.line, " ")
	if space == -1 {
		return "", newError(ErrEmptyDescription, msgEmptyTodo)
	}
	desc := strings.TrimSpace(p.line[space+1:])
	if desc == "" {
		return "", newError(ErrEmptyDescription, msgEmptyTodo)
	}
	return desc, nil
}

// DeadlineDescription returns the text between the first space and "/by".
func (p *Parser) DeadlineDescription() (string, error) {
	return p.clauseDescription(MarkerBy, msgEmptyDeadline, msgMissingBy)
}

// DeadlineDate returns the date that follows "/by".
func (p *Parser) DeadlineDate() (time.Time, error) {
	return p.clauseDate(MarkerBy, msgMissingBy)
}

// EventDescription returns the text between the first space and "/at".
func (p *Parser) EventDescription() (string, error) {
	return p.clauseDescription(MarkerAt, msgEmptyEvent, msgMissingAt)
}

// EventDate returns the date that follows "/at".
func (p *Parser) EventDate() (time.Time, error) {
	return p.clauseDate(MarkerAt, msgMissingAt)
}

// Keyword returns the second token, used as a search term.
func (p *Parser) Keyword() (string, error) {
	if len(p.tokens) < 2 || strings.TrimSpace(p.tokens[1]) == "" {
		return "", newError(ErrEmptyKeyword, msgEmptyKeyword)
	}
	return p.tokens[1], nil
}

// UpdatedDescription returns the new description of an update command: the
// text after the task number, up to a " /at " or " /by " clause if present.
func (p *Parser) UpdatedDescription() (string, error) {
	if len(p.tokens) < 2 {
		return "", newError(ErrEmptyDescription, msgEmptyUpdate)
	}
	numAt := strings.Index(p.line, p.tokens[1])
	space := strings.Index(p.line[numAt:], " ")
	if space == -1 {
		return "", newError(ErrEmptyDescription, msgEmptyUpdate)
	}
	start := numAt + space + 1

	end := len(p.line)
	var marker string
	switch {
	case strings.Contains(p.line, " "+MarkerAt+" "):
		marker = MarkerAt
	case strings.Contains(p.line, " "+MarkerBy+" "):
		marker = MarkerBy
	}
	if marker != "" {
		if i := strings.Index(p.line[start:], marker); i >= 0 {
			end = start + i
		}
	}

	desc := strings.TrimSpace(p.line[start:end])
	if desc == "" {
		return "", newError(ErrEmptyDescription, msgEmptyUpdate)
	}
	return desc, nil
}

// HasUpdateDateClause reports whether the line carries a " /at " or " /by " clause.
func (p *Parser) HasUpdateDateClause() bool {
	return strings.Contains(p.line, " "+MarkerAt+" ") || strings.Contains(p.line, " "+MarkerBy+" ")
}

// HasUpdateDescClause reports whether an update line carries a description,
// that is whether its third token is not a date marker. Lines with fewer than
// three tokens carry nothing to update.
func (p *Parser) HasUpdateDescClause() (bool, error) {
	if len(p.tokens) < 3 {
		return false, newError(ErrEmptyDescription, msgEmptyUpdate)
	}
	third := p.tokens[2]
	return third != MarkerAt && third != MarkerBy, nil
}

func (p *Parser) clauseDescription(marker, emptyMsg, missingMsg string) (string, error) {
	space := strings.Index(p.line, " ")
	if space == -1 {
		return "", newError(ErrEmptyDescription, emptyMsg)
	}
	at := strings.Index(p.line, marker)
	if at == -1 {
		return "", newError(ErrMissingClause, missingMsg)
	}
	if at <= space {
		return "", newError(ErrEmptyDescription, emptyMsg)
	}
	desc := strings.TrimSpace(p.line[space+1 : at])
	if desc == "" {
		return "", newError(ErrEmptyDescription, emptyMsg)
	}
	return desc, nil
}

func (p *Parser) clauseDate(marker, missingMsg string) (time.Time, error) {
	at := strings.Index(p.line, marker)
	if at == -1 {
		return time.Time{}, newError(ErrMissingClause, missingMsg)
	}
	start := at + dateOffset
	if start > len(p.line) {
		return time.Time{}, newError(ErrBadDateFormat, msgBadDate)
	}
	token := p.line[start:]
	if i := strings.IndexByte(token, ' '); i >= 0 {
		token = token[:i]
	}
	date, err := ParseDate(token)
	if err != nil {
		return time.Time{}, err
	}
	return date, nil
}

// ParseDate parses s as dd/mm/yyyy with zero-padded fields. Dates that do
// not exist on the calendar are rejected.
func ParseDate(s string) (time.Time, error) {
	if !matchesDateShape(s) {
		return time.Time{}, newError(ErrBadDateFormat, msgBadDate)
	}
	date, err := time.Parse(DateLayout, s)
	if err != nil || date.Year() == 0 {
		return time.Time{}, newError(ErrBadDateFormat, msgBadDate)
	}
	return date, nil
}

// FormatDate formats t as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// matchesDateShape checks for exactly dd/dd/dddd.
func matchesDateShape(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if i == 2 || i == 5 {
			if c != '/' {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
