package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// plainTextPolicy accepts free text and stores it verbatim. Text that carries HTML elements,
// comments or doctypes is rejected instead of being rewritten. Angle brackets that do not form a
// known HTML element, such as "Stack<T>" or "a < b", are ordinary text.
type plainTextPolicy struct {
	strict *bluemonday.Policy
}

func newPlainTextPolicy() plainTextPolicy {
	return plainTextPolicy{strict: bluemonday.StrictPolicy()}
}

// Clean trims value and returns it unchanged otherwise.
func (p plainTextPolicy) Clean(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrEmptyContent
	}
	if p.containsMarkup(value) {
		return "", ErrMarkupNotAllowed
	}
	return value, nil
}

func (p plainTextPolicy) containsMarkup(value string) bool {
	// The strict policy only escapes plain text, so identical output means nothing was parsed as a tag.
	if p.strict.Sanitize(value) == html.EscapeString(value) {
		return false
	}

	tokenizer := nethtml.NewTokenizer(strings.NewReader(value))
	for {
		switch tokenizer.Next() {
		case nethtml.ErrorToken:
			return false
		case nethtml.CommentToken, nethtml.DoctypeToken:
			return true
		case nethtml.StartTagToken, nethtml.EndTagToken, nethtml.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if atom.Lookup(name) != 0 {
				return true
			}
		}
	}
}
