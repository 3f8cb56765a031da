package session

import (
	"strings"
	"unicode"

	"github.com/gcbaptista/space-chatbot/internal/tokenizer"
)

// Entity is a named object the conversation can refer back to.
type Entity struct {
	Name    string
	Topic   string
	Aliases []string
}

const (
	TopicPlanets      = "planets"
	TopicStars        = "stars"
	TopicVietnamSpace = "vietnam_space"
)

// KnownEntities is the vocabulary used for mention tracking.
var KnownEntities = []Entity{
	{Name: "Mặt Trời", Topic: TopicStars, Aliases: []string{"mặt trời", "sun"}},
	{Name: "Sao Thủy", Topic: TopicPlanets, Aliases: []string{"sao thủy", "thủy tinh", "mercury"}},
	{Name: "Sao Kim", Topic: TopicPlanets, Aliases: []string{"sao kim", "kim tinh", "venus"}},
	{Name: "Trái Đất", Topic: TopicPlanets, Aliases: []string{"trái đất", "địa cầu", "earth"}},
	{Name: "Mặt Trăng", Topic: TopicPlanets, Aliases: []string{"mặt trăng", "moon"}},
	{Name: "Sao Hỏa", Topic: TopicPlanets, Aliases: []string{"sao hỏa", "hỏa tinh", "mars"}},
	{Name: "Sao Mộc", Topic: TopicPlanets, Aliases: []string{"sao mộc", "mộc tinh", "jupiter"}},
	{Name: "Sao Thổ", Topic: TopicPlanets, Aliases: []string{"sao thổ", "thổ tinh", "saturn"}},
	{Name: "Sao Thiên Vương", Topic: TopicPlanets, Aliases: []string{"sao thiên vương", "uranus"}},
	{Name: "Sao Hải Vương", Topic: TopicPlanets, Aliases: []string{"sao hải vương", "neptune"}},
	{Name: "Sao Diêm Vương", Topic: TopicPlanets, Aliases: []string{"sao diêm vương", "pluto"}},
	{Name: "Phạm Tuân", Topic: TopicVietnamSpace, Aliases: []string{"phạm tuân"}},
	{Name: "VINASAT-1", Topic: TopicVietnamSpace, Aliases: []string{"vinasat-1", "vinasat 1"}},
	{Name: "VINASAT-2", Topic: TopicVietnamSpace, Aliases: []string{"vinasat-2", "vinasat 2"}},
	{Name: "VNREDSat-1", Topic: TopicVietnamSpace, Aliases: []string{"vnredsat-1", "vnredsat"}},
	{Name: "PicoDragon", Topic: TopicVietnamSpace, Aliases: []string{"picodragon"}},
	{Name: "NanoDragon", Topic: TopicVietnamSpace, Aliases: []string{"nanodragon"}},
	{Name: "MicroDragon", Topic: TopicVietnamSpace, Aliases: []string{"microdragon"}},
}

// referencePhrases are Vietnamese expressions pointing back at something already said.
// Longer phrases come first so "hành tinh đó" wins over "đó".
var referencePhrases = [][]string{
	{"hành", "tinh", "đó"},
	{"hành", "tinh", "này"},
	{"hành", "tinh", "ấy"},
	{"vệ", "tinh", "đó"},
	{"vệ", "tinh", "này"},
	{"vệ", "tinh", "ấy"},
	{"ngôi", "sao", "đó"},
	{"ông", "ấy"},
	{"anh", "ấy"},
	{"cái", "đó"},
	{"cái", "này"},
	{"nó"},
}

// DetectEntities returns the canonical names of known entities mentioned in text,
// in vocabulary order.
func DetectEntities(text string) []string {
	found := make([]string, 0)
	for _, entity := range KnownEntities {
		if entity.matches(text) {
			found = append(found, entity.Name)
		}
	}
	return found
}

// LookupEntity finds a known entity by canonical name or alias.
func LookupEntity(name string) (Entity, bool) {
	for _, entity := range KnownEntities {
		if entity.matches(name) {
			return entity, true
		}
	}
	return Entity{}, false
}

func (e Entity) matches(text string) bool {
	padded := wordText(text)
	if strings.Contains(padded, wordText(e.Name)) {
		return true
	}
	for _, alias := range e.Aliases {
		if strings.Contains(padded, wordText(alias)) {
			return true
		}
	}
	return false
}

// wordText folds text to space-separated letters and digits, padded with
// spaces so substring checks respect word boundaries. Digits are kept so
// that "VINASAT-1" and "VINASAT-2" stay distinct.
func wordText(text string) string {
	folded := tokenizer.Fold(tokenizer.Normalize(text))
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, folded)
	return " " + strings.Join(strings.Fields(cleaned), " ") + " "
}

// HasReference reports whether text contains a pronoun-like back reference.
func HasReference(text string) bool {
	words := splitWords(text)
	_, _, ok := findReference(words)
	return ok
}

// replaceReference substitutes the first back reference in text with entity.
func replaceReference(text, entity string) (string, bool) {
	words := strings.Fields(tokenizer.Normalize(text))
	start, length, ok := findReference(splitWords(text))
	if !ok {
		return text, false
	}
	// Keep trailing punctuation attached to the last replaced word.
	suffix := trailingPunctuation(words[start+length-1])
	replaced := make([]string, 0, len(words)-length+1)
	replaced = append(replaced, words[:start]...)
	replaced = append(replaced, entity+suffix)
	replaced = append(replaced, words[start+length:]...)
	return strings.Join(replaced, " "), true
}

// splitWords lowercases text and strips punctuation from each word while
// keeping positions aligned with strings.Fields of the normalized text.
func splitWords(text string) []string {
	fields := strings.Fields(tokenizer.Normalize(text))
	words := make([]string, len(fields))
	for i, field := range fields {
		words[i] = strings.TrimFunc(field, isPunctuation)
	}
	return words
}

func findReference(words []string) (start, length int, ok bool) {
	for i := range words {
		for _, phrase := range referencePhrases {
			if i+len(phrase) > len(words) {
				continue
			}
			matched := true
			for j, w := range phrase {
				if words[i+j] != w {
					matched = false
					break
				}
			}
			if matched {
				return i, len(phrase), true
			}
		}
	}
	return 0, 0, false
}

func trailingPunctuation(word string) string {
	trimmed := strings.TrimRightFunc(word, isPunctuation)
	return word[len(trimmed):]
}

func isPunctuation(r rune) bool {
	return strings.ContainsRune(`?!.,;:"'()…`, r)
}
