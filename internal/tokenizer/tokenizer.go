// Package tokenizer turns Vietnamese text into index terms.
//
// Vietnamese writes multi-syllable words with spaces between syllables, so
// known domain compounds are joined with "_" before splitting. Every token
// is emitted twice when it carries diacritics: once as written and once
// ASCII-folded, so queries typed without accents still match the corpus.
package tokenizer

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonVietnameseRegex matches anything outside the Vietnamese alphabet, underscore and whitespace.
var nonVietnameseRegex = regexp.MustCompile(`[^a-zàáảãạăằắẳẵặâầấẩẫậèéẻẽẹêềếểễệìíỉĩịòóỏõọôồốổỗộơờớởỡợùúủũụưừứửữựỳýỷỹỵđ_\s]+`)

// whitespaceRegex collapses runs of whitespace.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// compoundTerms are astronomy and space-program phrases treated as single tokens.
var compoundTerms = []string{
	"hệ mặt trời", "mặt trời", "mặt trăng", "trái đất",
	"sao thủy", "sao kim", "sao hỏa", "sao mộc", "sao thổ",
	"sao thiên vương", "sao hải vương", "sao diêm vương",
	"hành tinh", "hành tinh lùn", "tiểu hành tinh", "sao chổi", "thiên thạch",
	"lỗ đen", "hố đen", "thiên hà", "dải ngân hà", "ngân hà", "năm ánh sáng",
	"vệ tinh", "quỹ đạo", "trọng lực", "lực hấp dẫn", "khí quyển", "vành đai",
	"phi hành gia", "nhà du hành", "du hành vũ trụ", "trạm vũ trụ", "tàu vũ trụ",
	"tên lửa", "kính viễn vọng", "vũ trụ", "thiên văn",
	"bão mặt trời", "gió mặt trời", "nhật thực", "nguyệt thực", "vụ nổ lớn",
	"việt nam", "phạm tuân",
}

type phrase struct {
	from string
	to   string
}

// phraseTable holds compoundTerms and their folded spellings, longest first.
var phraseTable = buildPhraseTable(compoundTerms)

func buildPhraseTable(terms []string) []phrase {
	seen := make(map[string]struct{})
	table := make([]phrase, 0, len(terms)*2)
	add := func(from string) {
		if _, ok := seen[from]; ok {
			return
		}
		seen[from] = struct{}{}
		table = append(table, phrase{from: from, to: strings.ReplaceAll(from, " ", "_")})
	}
	for _, term := range terms {
		add(term)
		add(Fold(term))
	}

	sort.SliceStable(table, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(table[i].from), utf8.RuneCountInString(table[j].from)
		if li != lj {
			return li > lj
		}
		return table[i].from < table[j].from
	})
	return table
}

// Normalize lowercases, trims, composes (NFC) and collapses whitespace.
func Normalize(text string) string {
	lower := strings.ToLower(strings.TrimSpace(norm.NFC.String(text)))
	return whitespaceRegex.ReplaceAllString(lower, " ")
}

// Fold strips Vietnamese diacritics and maps "đ" to "d".
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.NewReplacer("đ", "d", "Đ", "D").Replace(folded)
}

// JoinCompounds replaces known multi-word phrases with underscore-joined tokens.
func JoinCompounds(text string) string {
	for _, p := range phraseTable {
		if strings.Contains(text, p.from) {
			text = strings.ReplaceAll(text, p.from, p.to)
		}
	}
	return text
}

// Tokenize converts text into a de-duplicated list of terms.
// Diacritic-bearing tokens come first in order of appearance, followed by
// folded forms that are not already present. Tokens of one rune are dropped.
func Tokenize(text string) []string {
	processed := JoinCompounds(Normalize(text))
	processed = nonVietnameseRegex.ReplaceAllString(processed, " ")

	fields := strings.Fields(processed)

	tokens := make([]string, 0, len(fields)*2) // Initialize as empty slice, not nil
	seen := make(map[string]struct{}, len(fields)*2)
	add := func(token string) {
		if utf8.RuneCountInString(token) <= 1 {
			return
		}
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}

	for _, field := range fields {
		add(field)
	}
	for _, field := range fields {
		add(Fold(field))
	}
	return tokens
}

// ContainsPhrase reports whether phrase occurs in text as whole words,
// comparing both as written and ASCII-folded.
func ContainsPhrase(text, phrase string) bool {
	padded := " " + nonWordSpaces(Normalize(text)) + " "
	target := " " + nonWordSpaces(Normalize(phrase)) + " "
	if strings.Contains(padded, target) {
		return true
	}
	return strings.Contains(Fold(padded), Fold(target))
}

// nonWordSpaces replaces punctuation with spaces so that phrase matching
// respects word boundaries.
func nonWordSpaces(text string) string {
	return strings.Join(strings.Fields(nonVietnameseRegex.ReplaceAllString(text, " ")), " ")
}
