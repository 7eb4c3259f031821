package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/camelcase"
	"github.com/igorsobreira/titlecase"
)

var slugifyRegex1 = regexp.MustCompile(`\(.*\)`)
var slugifyRegex2 = regexp.MustCompile(` - .+`)
var slugifyRegex3 = regexp.MustCompile(`[^a-z\d]`)
var slugifyRegex4 = regexp.MustCompile(`-+`)
var slugifyRegex5 = regexp.MustCompile(`^-|-$`)

func SlugifyName(name string) string {
	lower := strings.ToLower(name)
	noBrackets := slugifyRegex1.ReplaceAllString(lower, "")
	noSuffix := slugifyRegex2.ReplaceAllString(noBrackets, "")
	limitedChars := slugifyRegex3.ReplaceAllString(noSuffix, "-")
	noDuplicateDashes := slugifyRegex4.ReplaceAllString(limitedChars, "-")
	noLeadingTrailingDashes := slugifyRegex5.ReplaceAllString(noDuplicateDashes, "")
	return noLeadingTrailingDashes
}

// PrettifyName turns a slug or camel-cased identifier into a display name
// ("sodium-extra" -> "Sodium Extra", "FTBQuests" -> "FTB Quests"). Used for
// catalog entries that only carry a machine name.
func PrettifyName(name string) string {
	if name == "" {
		return ""
	}
	var words []string
	for _, chunk := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	}) {
		words = append(words, camelcase.Split(chunk)...)
	}
	return titlecase.Title(strings.Join(words, " "))
}

// FormatCount renders a raw count the way catalog UIs do ("12.3K", "4.5M").
func FormatCount(n uint64) string {
	switch {
	case n >= 1_000_000_000:
		return trimZero(fmt.Sprintf("%.1fB", float64(n)/1_000_000_000))
	case n >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1fM", float64(n)/1_000_000))
	case n >= 1_000:
		return trimZero(fmt.Sprintf("%.1fK", float64(n)/1_000))
	}
	return fmt.Sprintf("%d", n)
}

func trimZero(s string) string {
	return strings.Replace(s, ".0", "", 1)
}
