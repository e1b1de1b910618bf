// Package i18n resolves the writing direction and the sort order of an
// atlas locale.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is used when a project names none.
const DefaultLocale = "en"

// rtlScripts are the scripts written right to left.
var rtlScripts = map[string]bool{
	"Adlm": true,
	"Arab": true,
	"Hebr": true,
	"Mand": true,
	"Nkoo": true,
	"Rohg": true,
	"Samr": true,
	"Syrc": true,
	"Thaa": true,
}

// Locale is a parsed language tag.
type Locale struct {
	tag language.Tag
}

// Parse accepts BCP 47 tags as well as POSIX style names such as
// "fr_FR.UTF-8".
func Parse(s string) (Locale, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultLocale
	}
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")

	tag, err := language.Parse(s)
	if err != nil {
		return Locale{}, fmt.Errorf("parse locale %q: %w", s, err)
	}

	return Locale{tag: tag}, nil
}

// MustParse is Parse for constant locales.
func MustParse(s string) Locale {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return l
}

func (l Locale) String() string {
	return l.tag.String()
}

// IsRTL reports whether the most likely script of the locale is written
// right to left.
func (l Locale) IsRTL() bool {
	script, _ := l.tag.Script()
	return rtlScripts[script.String()]
}

// NewCollator returns a collator sorting in the order of the locale. A
// collator must not be shared between goroutines.
func (l Locale) NewCollator() *collate.Collator {
	return collate.New(l.tag, collate.IgnoreCase, collate.Loose)
}

// Upper returns s in upper case following the rules of the locale.
func (l Locale) Upper(s string) string {
	return cases.Upper(l.tag).String(s)
}
