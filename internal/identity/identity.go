// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity derives deterministic author ids from names and
// sortable keys from paper ids.
package identity

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// keepHyphen strips everything except word characters, whitespace and
// hyphens; stripAll also removes hyphens.
var (
	keepHyphen = regexp.MustCompile(`[^\w\s-]`)
)

// deaccent decomposes characters and drops combining marks, so that
// "José" and "Jose" produce the same slug.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// translit maps Latin letters that carry no combining mark under NFD,
// so deaccent alone would delete them from the slug ("Łukasz" must not
// become "ukasz").
var translit = strings.NewReplacer(
	"Ł", "L", "ł", "l",
	"Ø", "O", "ø", "o",
	"Đ", "D", "đ", "d",
	"Ð", "D", "ð", "d",
	"Þ", "Th", "þ", "th",
	"ß", "ss",
	"Æ", "AE", "æ", "ae",
	"Œ", "OE", "œ", "oe",
	"Ħ", "H", "ħ", "h",
	"ı", "i",
)

func stripDiacritics(s string) string {
	out, _, err := transform.String(deaccent, s)
	if err != nil {
		return translit.Replace(s)
	}
	return translit.Replace(out)
}

func slug(name string) string {
	name = stripDiacritics(html.UnescapeString(strings.ToLower(name)))
	name = keepHyphen.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, " ", "-")
}

// CreateID derives an author id slug from first and last name parts.
// Either part may be empty; both empty yields the empty slug. Ids are
// deliberately not unique per person — collisions between distinct
// people are the disambiguation problem itself.
func CreateID(first, last string) string {
	switch {
	case first == "":
		return slug(last)
	case last == "":
		return slug(first)
	default:
		return slug(first + " " + last)
	}
}

// IDFromName derives an author id slug from a full display name.
func IDFromName(name string) string {
	return slug(name)
}

// CleanName normalizes a display name for comparison: HTML entities
// decoded, diacritics stripped, punctuation removed. When replacePunct is
// true hyphens become spaces (the comparison form); the identifier form
// keeps them.
func CleanName(name string, replacePunct bool) string {
	if !replacePunct {
		return stripDiacritics(html.UnescapeString(name))
	}
	name = keepHyphen.ReplaceAllString(stripDiacritics(html.UnescapeString(name)), "")
	return strings.ReplaceAll(name, "-", " ")
}

// PaperYear returns the four-digit year encoded in a paper id. Two-digit
// years above 60 are 19xx, the rest 20xx; the pivot must match the
// corpus' chronology exactly ("W95" is 1995, "W05" is 2005).
func PaperYear(pid string) (int, error) {
	venue, _, err := splitPID(pid)
	if err != nil {
		return 0, err
	}
	yy, err := strconv.Atoi(venue[1:])
	if err != nil {
		return 0, fmt.Errorf("paper id %q: year: %w", pid, err)
	}
	if yy > 60 {
		return 1900 + yy, nil
	}
	return 2000 + yy, nil
}

// PaperVenue returns the venue letter of a paper id.
func PaperVenue(pid string) (string, error) {
	venue, _, err := splitPID(pid)
	if err != nil {
		return "", err
	}
	return venue[:1], nil
}

// PaperSortKey converts a paper id into an integer that sorts papers
// chronologically: year expanded via the PaperYear pivot, concatenated
// with the sequence number.
func PaperSortKey(pid string) (int, error) {
	_, seq, err := splitPID(pid)
	if err != nil {
		return 0, err
	}
	year, err := PaperYear(pid)
	if err != nil {
		return 0, err
	}
	key, err := strconv.Atoi(strconv.Itoa(year) + seq)
	if err != nil {
		return 0, fmt.Errorf("paper id %q: sequence: %w", pid, err)
	}
	return key, nil
}

func splitPID(pid string) (venue, seq string, err error) {
	parts := strings.SplitN(pid, "-", 2)
	if len(parts) != 2 || len(parts[0]) < 2 {
		return "", "", fmt.Errorf("paper id %q is not <venue><yy>-<number>", pid)
	}
	return parts[0], parts[1], nil
}

// NameFromParts renders a structured name as "first last", dropping the
// missing part when only one is recorded.
func NameFromParts(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
