// Package naming holds the pure string transforms for folder and file names:
// sanitizing the user-supplied FIO and composing the final name a file gets
// on Drive. Nothing here touches the network or the clock; callers inject
// the timestamp.
package naming

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// timestampLayout is fixed-width and sortable, with no characters that are
// unsafe in file names.
const timestampLayout = "2006-01-02_15-04-05"

// hostileChars are stripped from every name component; they are path
// separators or reserved on common filesystems and storage backends.
const hostileChars = `\/:*?"<>|`

// SanitizeIdentity keeps only letters (any script) and whitespace, collapses
// whitespace runs to a single space and trims the ends. Idempotent; never fails.
func SanitizeIdentity(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ValidIdentity reports whether raw is an acceptable FIO: nothing but
// letters and whitespace, and at least 3 runes once sanitized. Digits or
// punctuation anywhere reject the whole input rather than being silently
// dropped.
func ValidIdentity(raw string) bool {
	for _, r := range raw {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return utf8.RuneCountInString(SanitizeIdentity(raw)) >= 3
}

// ComposeFileName derives the name a file gets on Drive:
//
//	{fio}_{subject with spaces replaced by underscores}_{timestamp}{ext}
//
// The extension is taken verbatim from the last dot of originalName (empty if
// none). Two calls within the same second for the same fio/subject collide;
// the per-user folder, not the timestamp, is the main disambiguation.
func ComposeFileName(fio, subject, originalName string, now time.Time) string {
	ext := ""
	if i := strings.LastIndex(originalName, "."); i >= 0 {
		ext = stripHostile(originalName[i:])
	}

	fio = collapseSpaces(stripHostile(fio))
	subject = strings.ReplaceAll(collapseSpaces(stripHostile(subject)), " ", "_")

	return fio + "_" + subject + "_" + now.Format(timestampLayout) + ext
}

func stripHostile(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(hostileChars, r) {
			return -1
		}
		return r
	}, s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
