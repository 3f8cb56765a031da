package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/gcbaptista/space-chatbot/internal/knowledge"
	"github.com/gcbaptista/space-chatbot/internal/session"
	"github.com/gcbaptista/space-chatbot/internal/tokenizer"
)

// CasualIntent is a small-talk category answered without retrieval.
type CasualIntent string

const (
	IntentGreeting     CasualIntent = "greeting"
	IntentIdentity     CasualIntent = "identity"
	IntentCapabilities CasualIntent = "capabilities"
	IntentThanks       CasualIntent = "thanks"
	IntentGoodbye      CasualIntent = "goodbye"
	IntentCompliment   CasualIntent = "compliment"
	IntentConfusion    CasualIntent = "confusion"
)

// MaxCasualLength is the longest input, in runes, checked for small talk.
const MaxCasualLength = 50

// casualPatterns is checked in order. Greeting is last so that
// "chào bạn, bạn là ai?" is answered as an identity question.
var casualPatterns = []struct {
	intent  CasualIntent
	phrases []string
}{
	{IntentIdentity, []string{"bạn là ai", "bạn tên gì", "tên bạn là gì", "bạn là gì", "who are you"}},
	{IntentCapabilities, []string{"bạn làm được gì", "bạn có thể làm gì", "bạn giúp được gì", "bạn biết gì", "bạn có thể giúp gì", "what can you do"}},
	{IntentThanks, []string{"cảm ơn", "cám ơn", "thanks", "thank you", "tks"}},
	{IntentGoodbye, []string{"tạm biệt", "hẹn gặp lại", "bye", "goodbye"}},
	{IntentCompliment, []string{"giỏi quá", "hay quá", "tuyệt vời", "bạn giỏi", "thông minh quá", "great"}},
	{IntentConfusion, []string{"không hiểu", "khó hiểu", "là sao", "huh"}},
	{IntentGreeting, []string{"xin chào", "chào", "hello", "hi", "hey", "alo"}},
}

// knownTopics are the knowledge base document names; a message naming one is
// a real question even when it opens with small talk.
var knownTopics = func() []string {
	docs := knowledge.Documents()
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		names = append(names, doc.Name)
	}
	return names
}()

var casualReplies = map[CasualIntent][]string{
	IntentGreeting: {
		"Xin chào! Tôi là trợ lý thiên văn. Bạn muốn tìm hiểu về hành tinh nào trong Hệ Mặt Trời hôm nay?",
		"Chào bạn! Hãy hỏi tôi về các hành tinh, Mặt Trăng hay chương trình vũ trụ của Việt Nam nhé.",
		"Chào bạn! Rất vui được cùng bạn khám phá vũ trụ. Bạn đang tò mò điều gì?",
	},
	IntentIdentity: {
		"Tôi là trợ lý ảo chuyên về thiên văn học, Hệ Mặt Trời và chương trình vũ trụ Việt Nam.",
		"Tôi là chatbot thiên văn, được xây dựng để trả lời các câu hỏi về vũ trụ bằng tiếng Việt.",
	},
	IntentCapabilities: {
		"Tôi có thể giải thích về các hành tinh, Mặt Trời, Mặt Trăng, lỗ đen, thiên hà và các vệ tinh Việt Nam như VINASAT hay VNREDSat-1.",
		"Bạn có thể hỏi tôi thông số các hành tinh, lịch sử chuyến bay của Phạm Tuân, hoặc những khái niệm thiên văn cơ bản.",
	},
	IntentThanks: {
		"Không có gì! Nếu còn thắc mắc về vũ trụ, cứ hỏi tôi nhé.",
		"Rất vui được giúp bạn! Chúc bạn tiếp tục khám phá bầu trời.",
	},
	IntentGoodbye: {
		"Tạm biệt! Hẹn gặp lại bạn trong chuyến du hành tiếp theo.",
		"Chào tạm biệt! Nhớ ngắm sao khi trời quang nhé.",
	},
	IntentCompliment: {
		"Cảm ơn bạn! Vũ trụ còn rất nhiều điều thú vị, bạn muốn nghe thêm về chủ đề nào?",
		"Bạn quá khen! Tôi luôn sẵn sàng trả lời thêm các câu hỏi thiên văn.",
	},
	IntentConfusion: {
		"Xin lỗi nếu tôi chưa rõ ràng. Bạn có thể hỏi lại cụ thể hơn, ví dụ: \"Sao Hỏa có bao nhiêu vệ tinh?\"",
		"Để tôi giúp bạn dễ hơn: hãy nêu tên một hành tinh hoặc một khái niệm thiên văn bạn muốn tìm hiểu.",
	},
}

// DetectCasualIntent classifies short small-talk messages. Messages longer than
// MaxCasualLength, or that mention a known entity, knowledge base topic or
// astronomy compound term, are never casual.
func DetectCasualIntent(text string) (CasualIntent, bool) {
	normalized := tokenizer.Normalize(text)
	if normalized == "" || utf8.RuneCountInString(normalized) > MaxCasualLength {
		return "", false
	}
	if len(session.DetectEntities(normalized)) > 0 || mentionsTopic(normalized) {
		return "", false
	}
	for _, pattern := range casualPatterns {
		if containsAny(normalized, pattern.phrases) {
			return pattern.intent, true
		}
	}
	return "", false
}

func mentionsTopic(text string) bool {
	for _, token := range tokenizer.Tokenize(text) {
		if strings.Contains(token, "_") {
			return true
		}
	}
	for _, name := range knownTopics {
		if tokenizer.ContainsPhrase(text, name) {
			return true
		}
	}
	return false
}

// CasualReplies returns the reply templates for intent.
func CasualReplies(intent CasualIntent) []string {
	return casualReplies[intent]
}
