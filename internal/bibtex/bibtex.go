// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibtex synthesizes BibTeX entries from normalized paper
// records. Backends that serve native BibTeX (DBLP) bypass this
// package; everything else is generated here.
package bibtex

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/academic-mcp/pkg/types"
)

// latexEscapes substitutes accented Latin-1 letters and LaTeX
// reserved characters. Code points outside the table pass through.
var latexEscapes = map[rune]string{
	'ä': `{\"a}`, 'ö': `{\"o}`, 'ü': `{\"u}`,
	'Ä': `{\"A}`, 'Ö': `{\"O}`, 'Ü': `{\"U}`,
	'á': `{\'a}`, 'é': `{\'e}`, 'í': `{\'i}`, 'ó': `{\'o}`, 'ú': `{\'u}`,
	'Á': `{\'A}`, 'É': `{\'E}`, 'Í': `{\'I}`, 'Ó': `{\'O}`, 'Ú': `{\'U}`,
	'à': "{\\`a}", 'è': "{\\`e}", 'ì': "{\\`i}", 'ò': "{\\`o}", 'ù': "{\\`u}",
	'â': `{\^a}`, 'ê': `{\^e}`, 'î': `{\^i}`, 'ô': `{\^o}`, 'û': `{\^u}`,
	'ã': `{\~a}`, 'ñ': `{\~n}`, 'õ': `{\~o}`,
	'ç': `{\c{c}}`, 'Ç': `{\c{C}}`,
	'ß': `{\ss}`,
	'å': `{\aa}`, 'Å': `{\AA}`,
	'ø': `{\o}`, 'Ø': `{\O}`,
	'æ': `{\ae}`, 'Æ': `{\AE}`,
	'œ': `{\oe}`, 'Œ': `{\OE}`,
	'&': `\&`, '%': `\%`, '$': `\$`, '#': `\#`, '_': `\_`,
	'{': `\{`, '}': `\}`,
	'~': `{\textasciitilde}`, '^': `{\textasciicircum}`,
}

// Escape rewrites s so LaTeX treats it as literal text.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if esc, ok := latexEscapes[r]; ok {
			b.WriteString(esc)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var conferenceKeywords = []string{
	"proceedings", "workshop", "symposium", "conference",
	"icml", "neurips", "iclr", "cvpr", "iccv", "eccv",
	"acl", "emnlp", "naacl", "aaai", "ijcai",
	"sigchi", "sigmod", "vldb", "icse", "fse", "issta", "pldi",
}

var journalKeywords = []string{
	"journal", "transactions", "review", "letters",
	"nature", "science", "cell", "lancet", "nejm",
	"ieee", "acm", "springer", "elsevier",
}

// EntryType infers the BibTeX entry type from publication metadata.
// Anything on arXiv is misc regardless of venue wording; conference
// keywords win over journal keywords. Matching is case-insensitive
// substring.
func EntryType(venue, arxivID, volume, pages string) string {
	lower := strings.ToLower(venue)
	if arxivID != "" || strings.Contains(lower, "arxiv") {
		return "misc"
	}
	for _, kw := range conferenceKeywords {
		if strings.Contains(lower, kw) {
			return "inproceedings"
		}
	}
	for _, kw := range journalKeywords {
		if strings.Contains(lower, kw) {
			return "article"
		}
	}
	if volume != "" && pages != "" {
		return "article"
	}
	return "misc"
}

// titleStopWords are skipped when picking the key's title word.
var titleStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "on": true, "in": true,
	"of": true, "for": true, "to": true, "and": true, "with": true,
}

// Key builds a citation key of the form Lastname2024Word. Diacritics
// are folded away so the key stays ASCII.
func Key(authors []types.Author, year int, title string) string {
	var b strings.Builder

	if len(authors) > 0 {
		name := authors[0].Name
		var last string
		if i := strings.Index(name, ","); i >= 0 {
			last = strings.TrimSpace(name[:i])
		} else if fields := strings.Fields(name); len(fields) > 0 {
			last = fields[len(fields)-1]
		}
		b.WriteString(capitalize(asciiFold(last)))
	} else {
		b.WriteString("Unknown")
	}

	if year > 0 {
		b.WriteString(strconv.Itoa(year))
	}

	if word := significantTitleWord(title); word != "" {
		b.WriteString(capitalize(asciiFold(word)))
	}

	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

// significantTitleWord picks the first title word made purely of
// ASCII letters that is not a stop word. Words with digits or
// non-ASCII letters are passed over entirely.
func significantTitleWord(title string) string {
	tokens := strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	for _, tok := range tokens {
		if !asciiLetters(tok) {
			continue
		}
		if !titleStopWords[strings.ToLower(tok)] {
			return tok
		}
	}
	return ""
}

func asciiLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return s != ""
}

// asciiFold decomposes s canonically and keeps only ASCII
// alphanumerics, so "Müller" folds to "Muller".
func asciiFold(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	out := make([]rune, len(runes))
	out[0] = unicode.ToUpper(runes[0])
	for i, r := range runes[1:] {
		out[i+1] = unicode.ToLower(r)
	}
	return string(out)
}

// FormatAuthors renders an author list in BibTeX's "Last, First"
// convention joined by " and ". Names that already contain a comma
// are kept as written; single-token names pass through.
func FormatAuthors(authors []types.Author) string {
	if len(authors) == 0 {
		return ""
	}
	formatted := make([]string, 0, len(authors))
	for _, a := range authors {
		name := strings.TrimSpace(a.Name)
		if strings.Contains(name, ",") {
			formatted = append(formatted, Escape(name))
			continue
		}
		fields := strings.Fields(name)
		if len(fields) >= 2 {
			last := fields[len(fields)-1]
			first := strings.Join(fields[:len(fields)-1], " ")
			formatted = append(formatted, Escape(last)+", "+Escape(first))
			continue
		}
		formatted = append(formatted, Escape(name))
	}
	return strings.Join(formatted, " and ")
}
