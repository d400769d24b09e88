package story

import (
	"path"
	"strings"
	"unicode"
)

// storySuffixes are stripped, in order, when a title is derived from a module id.
var storySuffixes = []string{".stories.hcl", ".stories"}

// Sanitize lowercases s and replaces every run of characters that are not
// letters or digits with a single dash.
func Sanitize(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ToID builds the canonical story id for a title and a story name.
func ToID(title, name string) ID {
	return ID(Sanitize(title) + "--" + Sanitize(name))
}

// StoryNameFromExport turns an export name into a display name,
// e.g. "primaryButton" becomes "Primary Button".
func StoryNameFromExport(exportName string) string {
	words := splitWords(exportName)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// TitleFromModuleID derives a title from a module path when the module does
// not declare one: "components/button.stories.hcl" becomes "components/button".
func TitleFromModuleID(id ModuleID) string {
	p := strings.TrimPrefix(path.Clean(strings.ReplaceAll(string(id), "\\", "/")), "./")
	for _, suffix := range storySuffixes {
		if strings.HasSuffix(p, suffix) {
			return strings.TrimSuffix(p, suffix)
		}
	}
	return strings.TrimSuffix(p, path.Ext(p))
}

func splitWords(s string) []string {
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(current) > 0 {
			prev := current[len(current)-1]
			switch {
			case unicode.IsLower(prev) && unicode.IsUpper(r):
				flush()
			case unicode.IsDigit(prev) != unicode.IsDigit(r):
				flush()
			case unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				// "HTMLButton" splits before the "B".
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}
