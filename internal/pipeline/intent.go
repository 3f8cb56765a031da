package pipeline

import (
	"strings"
	"unicode"

	"github.com/gcbaptista/space-chatbot/internal/session"
	"github.com/gcbaptista/space-chatbot/internal/tokenizer"
	"github.com/gcbaptista/space-chatbot/model"
)

// QuestionType classifies a query by its interrogative form.
type QuestionType string

const (
	QuestionWhat    QuestionType = "what"
	QuestionHow     QuestionType = "how"
	QuestionWhy     QuestionType = "why"
	QuestionWho     QuestionType = "who"
	QuestionWhen    QuestionType = "when"
	QuestionWhere   QuestionType = "where"
	QuestionHowMany QuestionType = "how_many"
	QuestionDefault QuestionType = "default"
)

// Intents reported in NLP insights for non-casual queries.
const (
	IntentDefinition  = "definition"
	IntentInformation = "information"
)

// questionMarkers is checked in order; the first match wins.
var questionMarkers = []struct {
	kind    QuestionType
	phrases []string
}{
	{QuestionHowMany, []string{"bao nhiêu", "mấy", "how many", "how much"}},
	{QuestionWhy, []string{"tại sao", "vì sao", "sao lại", "why"}},
	{QuestionHow, []string{"như thế nào", "thế nào", "làm sao", "bằng cách nào", "how"}},
	{QuestionWho, []string{"là ai", "ai là", "người nào", "ai đã", "who"}},
	{QuestionWhen, []string{"khi nào", "bao giờ", "năm nào", "lúc nào", "when"}},
	{QuestionWhere, []string{"ở đâu", "nơi nào", "chỗ nào", "where"}},
	{QuestionWhat, []string{"là gì", "cái gì", "những gì", "gì", "what"}},
}

var definitionMarkers = []string{
	"là gì", "là ai", "nghĩa là", "định nghĩa", "khái niệm", "giải thích", "what is", "who is",
}

// topicNoise is stripped from a definitional question to leave the topic.
var topicNoise = []string{
	"cho tôi biết", "cho mình biết", "bạn có biết", "giải thích", "định nghĩa",
	"khái niệm", "nghĩa là", "là gì", "là ai", "what is", "who is",
	"về", "hãy", "vậy", "thế", "nhỉ", "ạ",
}

var stopWords = wordSet(
	"là", "gì", "có", "của", "và", "những", "các", "một", "bạn", "tôi", "mình",
	"cho", "về", "không", "này", "đó", "thì", "được", "với", "như", "thế", "nào",
	"bao", "nhiêu", "tại", "sao", "vì", "ai", "khi", "đâu", "hãy", "biết", "nói",
	"kể", "giờ", "lúc", "nơi", "chỗ", "mấy", "đã", "sẽ", "đang", "rất", "lại",
	"what", "how", "why", "who", "when", "where", "is", "the", "of",
)

const maxKeywords = 5

// plainStopWords holds the folded stopwords used for text typed without
// diacritics. Folds shared with common content words are left out.
var plainStopWords = foldedStopWords(stopWords, "biệt")

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func foldedStopWords(exact map[string]struct{}, homographs ...string) map[string]struct{} {
	skip := make(map[string]struct{}, len(homographs))
	for _, h := range homographs {
		skip[tokenizer.Fold(h)] = struct{}{}
	}
	set := make(map[string]struct{}, len(exact))
	for w := range exact {
		folded := tokenizer.Fold(w)
		if _, ok := skip[folded]; ok {
			continue
		}
		set[folded] = struct{}{}
	}
	return set
}

func isStopWord(token string, plain bool) bool {
	if _, ok := stopWords[token]; ok {
		return true
	}
	if !plain {
		return false
	}
	_, ok := plainStopWords[token]
	return ok
}

// DetectQuestionType returns the interrogative form of text.
func DetectQuestionType(text string) QuestionType {
	for _, marker := range questionMarkers {
		if containsAny(text, marker.phrases) {
			return marker.kind
		}
	}
	return QuestionDefault
}

// IsDefinitional reports whether text asks what something is.
func IsDefinitional(text string) bool {
	return containsAny(text, definitionMarkers)
}

// ExtractTopic strips question words from a definitional query, leaving the subject.
func ExtractTopic(text string) string {
	words := " " + strings.Join(wordsOf(tokenizer.Normalize(text)), " ") + " "
	for _, noise := range topicNoise {
		words = strings.ReplaceAll(words, " "+noise+" ", " ")
	}
	return strings.Join(strings.Fields(words), " ")
}

// Keywords returns up to five content terms of text in order of appearance,
// preferring the accented spelling of each term.
func Keywords(text string) []string {
	keywords := make([]string, 0, maxKeywords)
	seenFolded := make(map[string]struct{})
	normalized := tokenizer.Normalize(text)
	plain := tokenizer.Fold(normalized) == normalized
	for _, token := range tokenizer.Tokenize(text) {
		folded := tokenizer.Fold(token)
		if _, ok := seenFolded[folded]; ok {
			continue
		}
		seenFolded[folded] = struct{}{}
		if isStopWord(token, plain) {
			continue
		}
		keywords = append(keywords, strings.ReplaceAll(token, "_", " "))
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// Insights builds the NLP metadata attached to a response.
func Insights(text string, casual CasualIntent) *model.NLPInsights {
	intent := IntentInformation
	switch {
	case casual != "":
		intent = string(casual)
	case IsDefinitional(text):
		intent = IntentDefinition
	}
	return &model.NLPInsights{
		QuestionType: string(DetectQuestionType(text)),
		Intent:       intent,
		Entities:     session.DetectEntities(text),
		Keywords:     Keywords(text),
	}
}

// containsAny matches whole-word phrases. Text typed without any diacritics is
// compared against folded phrases; accented text must match exactly so that
// "mây" is not read as "mấy".
func containsAny(text string, phrases []string) bool {
	normalized := " " + strings.Join(wordsOf(tokenizer.Normalize(text)), " ") + " "
	plain := tokenizer.Fold(normalized) == normalized
	for _, phrase := range phrases {
		target := " " + phrase + " "
		if strings.Contains(normalized, target) {
			return true
		}
		if plain && strings.Contains(normalized, tokenizer.Fold(target)) {
			return true
		}
	}
	return false
}

// wordsOf splits text into words of letters and digits.
func wordsOf(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
