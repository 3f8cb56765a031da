package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gcbaptista/space-chatbot/internal/tokenizer"
	"github.com/gcbaptista/space-chatbot/model"
)

const (
	maxRelatedContexts = 2
	relatedSummaryLen  = 160
	maxListedFacts     = 3
)

// FinalApology is returned when no other strategy produced a reply.
const FinalApology = "Xin lỗi, tôi không thể trả lời câu hỏi này lúc này. Bạn vui lòng thử lại sau hoặc hỏi theo cách khác nhé."

var closingLines = map[QuestionType]string{
	QuestionWhat:    "Bạn có muốn tìm hiểu thêm chi tiết nào khác không?",
	QuestionHow:     "Nếu cần, tôi có thể giải thích kỹ hơn từng bước.",
	QuestionWhy:     "Hy vọng phần giải thích trên giúp bạn hiểu rõ nguyên nhân.",
	QuestionWho:     "Bạn có muốn biết thêm về những đóng góp khác không?",
	QuestionWhen:    "Bạn có muốn biết thêm về các mốc thời gian liên quan không?",
	QuestionWhere:   "Bạn có muốn tìm hiểu thêm về vị trí của các thiên thể khác không?",
	QuestionHowMany: "Bạn có muốn so sánh con số này với các thiên thể khác không?",
	QuestionDefault: "Hãy hỏi thêm nếu bạn muốn khám phá sâu hơn nhé!",
}

var cannedReplies = map[QuestionType][]string{
	QuestionWhat: {
		"Xin lỗi, tôi chưa có dữ liệu về điều bạn hỏi. Bạn có thể hỏi về các hành tinh trong Hệ Mặt Trời hoặc chương trình vũ trụ Việt Nam.",
		"Tôi chưa tìm thấy thông tin phù hợp. Hãy thử hỏi về Sao Hỏa, Sao Mộc hay vệ tinh VINASAT nhé.",
	},
	QuestionHow: {
		"Xin lỗi, tôi chưa có đủ dữ liệu để giải thích cách thức này. Bạn thử hỏi cụ thể về một hành tinh hoặc hiện tượng thiên văn nhé.",
		"Tôi chưa biết cách trả lời câu hỏi này. Bạn có thể diễn đạt lại với tên một thiên thể cụ thể không?",
	},
	QuestionWhy: {
		"Câu hỏi rất hay! Tiếc là tôi chưa có dữ liệu để giải thích nguyên nhân. Bạn thử hỏi về một hành tinh cụ thể nhé.",
		"Xin lỗi, tôi chưa thể giải thích điều này. Hãy thử hỏi về đặc điểm của một hành tinh trong Hệ Mặt Trời.",
	},
	QuestionWho: {
		"Xin lỗi, tôi chưa có thông tin về người này. Bạn có muốn tìm hiểu về phi hành gia Phạm Tuân không?",
		"Tôi chưa tìm thấy nhân vật bạn hỏi. Tôi có thể kể về những người Việt Nam đầu tiên tham gia khám phá vũ trụ.",
	},
	QuestionWhen: {
		"Xin lỗi, tôi chưa có mốc thời gian cho câu hỏi này. Bạn thử hỏi về thời điểm phóng vệ tinh VINASAT-1 nhé.",
	},
	QuestionWhere: {
		"Xin lỗi, tôi chưa có dữ liệu về vị trí bạn hỏi. Bạn thử hỏi về khoảng cách từ một hành tinh đến Mặt Trời nhé.",
	},
	QuestionHowMany: {
		"Xin lỗi, tôi chưa có con số chính xác cho câu hỏi này. Bạn thử hỏi số vệ tinh của một hành tinh cụ thể nhé.",
	},
	QuestionDefault: {
		"Xin lỗi, tôi chưa hiểu rõ câu hỏi. Tôi có thể trả lời về các hành tinh, Mặt Trăng, Mặt Trời và chương trình vũ trụ Việt Nam.",
		"Tôi chưa có thông tin về chủ đề này. Bạn hãy thử hỏi về Hệ Mặt Trời hoặc các vệ tinh của Việt Nam nhé.",
	},
}

// CannedReplies returns the no-context replies for a question type.
func CannedReplies(kind QuestionType) []string {
	if replies, ok := cannedReplies[kind]; ok {
		return replies
	}
	return cannedReplies[QuestionDefault]
}

// MainContext picks the context with the longest name appearing in the query,
// so "Hệ Mặt Trời" wins over "Mặt Trời". Without a match the first context is used.
func MainContext(query string, contexts []model.ContextRecord) (model.ContextRecord, int) {
	best, bestLen := 0, 0
	for i, ctx := range contexts {
		n := utf8.RuneCountInString(ctx.Name)
		if n > bestLen && tokenizer.ContainsPhrase(query, ctx.Name) {
			best, bestLen = i, n
		}
	}
	return contexts[best], best
}

// TemplateReply composes a deterministic answer from the gathered contexts.
// It fails when there are no contexts or the main context carries no text.
func TemplateReply(query string, contexts []model.ContextRecord) (string, bool) {
	if len(contexts) == 0 {
		return "", false
	}
	main, mainIdx := MainContext(query, contexts)

	var b strings.Builder
	switch data := main.Data.(type) {
	case *model.PlanetFacts:
		writePlanet(&b, data)
	case *model.ProgramFacts:
		writeProgram(&b, data)
	case *model.ConceptFacts:
		writeConcept(&b, data)
	default:
		if strings.TrimSpace(main.Description) == "" {
			return "", false
		}
		fmt.Fprintf(&b, "%s: %s", main.Name, main.Description)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", false
	}

	related := 0
	for i, ctx := range contexts {
		if i == mainIdx || related == maxRelatedContexts || ctx.Description == "" {
			continue
		}
		if related == 0 {
			b.WriteString("\n\nThông tin liên quan:")
		}
		fmt.Fprintf(&b, "\n- %s: %s", ctx.Name, summarize(ctx.Description, relatedSummaryLen))
		related++
	}

	b.WriteString("\n\n")
	b.WriteString(closingLines[DetectQuestionType(query)])
	return b.String(), true
}

// ErrorFallbackReply is used when contexts exist but no answer could be composed from them.
func ErrorFallbackReply(contexts []model.ContextRecord) string {
	names := make([]string, 0, len(contexts))
	for _, ctx := range contexts {
		if ctx.Name != "" {
			names = append(names, ctx.Name)
		}
	}
	if len(names) == 0 {
		return FinalApology
	}
	return fmt.Sprintf("Xin lỗi, tôi gặp sự cố khi soạn câu trả lời. Tôi tìm thấy thông tin liên quan đến: %s. Bạn thử hỏi cụ thể hơn về một trong các chủ đề này nhé.",
		strings.Join(names, ", "))
}

func writePlanet(b *strings.Builder, p *model.PlanetFacts) {
	name := p.Name
	if p.EnglishName != "" {
		name = fmt.Sprintf("%s (%s)", p.Name, p.EnglishName)
	}
	fmt.Fprintf(b, "%s: %s", name, p.Description)

	stats := []struct{ label, value string }{
		{"Đường kính", p.Diameter},
		{"Khoảng cách đến Mặt Trời", p.DistanceFromSun},
		{"Chu kỳ quỹ đạo", p.OrbitalPeriod},
		{"Độ dài một ngày", p.DayLength},
		{"Nhiệt độ", p.Temperature},
	}
	b.WriteString("\n\nThông số chính:")
	for _, s := range stats {
		if s.value != "" {
			fmt.Fprintf(b, "\n- %s: %s", s.label, s.value)
		}
	}
	fmt.Fprintf(b, "\n- Số vệ tinh tự nhiên: %d", p.Moons)
	writeFacts(b, "Điều thú vị", p.Facts)
}

func writeProgram(b *strings.Builder, p *model.ProgramFacts) {
	b.WriteString(p.Description)
	if p.Year > 0 && p.Organization != "" {
		fmt.Fprintf(b, " (%d, %s)", p.Year, p.Organization)
	} else if p.Year > 0 {
		fmt.Fprintf(b, " (%d)", p.Year)
	}
	writeFacts(b, "Thành tựu nổi bật", p.Achievements)
}

func writeConcept(b *strings.Builder, c *model.ConceptFacts) {
	b.WriteString(c.Description)
	writeFacts(b, "Bạn có biết", c.Facts)
}

func writeFacts(b *strings.Builder, title string, facts []string) {
	if len(facts) == 0 {
		return
	}
	fmt.Fprintf(b, "\n\n%s:", title)
	for i, fact := range facts {
		if i == maxListedFacts {
			break
		}
		fmt.Fprintf(b, "\n- %s", fact)
	}
}

func summarize(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	return string([]rune(text)[:max]) + "..."
}
