package guardian

import "strings"

// defaultMessages holds built-in translations of the standard fallback reply,
// keyed by two-letter language code.
var defaultMessages = map[string]string{
	"en": "I'm sorry, I can't help with this request. Try writing short, complete questions with one request at a time.",
	"es": "Lo siento, no puedo ayudarte con esta solicitud. Intenta escribir preguntas cortas y completas con una sola solicitud a la vez.",
	"fr": "Désolé, je ne peux pas vous aider pour cette demande. Essayez d'écrire des questions courtes et complètes, une demande à la fois.",
	"de": "Es tut mir leid, ich kann bei dieser Anfrage nicht helfen. Versuchen Sie, kurze, vollständige Fragen zu stellen, jeweils eine Anfrage.",
	"it": "Mi spiace, non riesco ad aiutarti per questa richiesta. Prova a scrivere domande complete e brevi con una richiesta alla volta.",
	"pt": "Desculpe, não consigo ajudar com este pedido. Tente escrever perguntas curtas e completas, com um pedido de cada vez.",
	"zh": "抱歉，我无法处理此请求。请尝试以一次一项请求的方式，撰写简短且完整的问题。",
	"ja": "申し訳ありませんが、このリクエストにはお手伝いできません。短く完結した質問を、ひとつずつ記入してください。",
	"ko": "죄송합니다. 이 요청에는 도움을 드릴 수 없습니다. 짧고 완전한 질문을 한 번에 하나씩 작성해 보세요.",
	"ru": "Извините, я не могу помочь с этим запросом. Попробуйте задавать короткие и полные вопросы по одному.",
	"ar": "عذرًا، لا أستطيع المساعدة في هذا الطلب. حاول كتابة أسئلة قصيرة ومكتملة، واطرح طلبًا واحدًا في كل مرة.",
	"hi": "माफ़ कीजिये, मैं इस अनुरोध में मदद नहीं कर सकता। कोशिश करें कि संक्षिप्त और पूर्ण प्रश्न लिखें, एक बार में केवल एक अनुरोध।",
}

// LangCode normalizes a browser language hint ("en-US", "pt-BR") to its
// two-letter code. Empty input yields an empty code.
func LangCode(browserLang string) string {
	if browserLang == "" {
		return ""
	}
	code, _, _ := strings.Cut(browserLang, "-")
	return strings.ToLower(code)
}

// SelectDefaultMessage picks the localized rejection message.
//
// Priority:
//  1. the per-language override from settings, when it has the language
//  2. the built-in translation table
//  3. the flat default_message from settings
//  4. English
func SelectDefaultMessage(s Settings, browserLang string) string {
	lang := LangCode(browserLang)

	if lang != "" {
		if msg, ok := s.DefaultMessages[lang]; ok && msg != "" {
			return msg
		}
		if msg, ok := defaultMessages[lang]; ok {
			return msg
		}
	}

	if len(s.DefaultMessages) > 0 {
		if msg, ok := s.DefaultMessages["en"]; ok && msg != "" {
			return msg
		}
	}

	if s.DefaultMessage != "" {
		return s.DefaultMessage
	}

	return defaultMessages["en"]
}
