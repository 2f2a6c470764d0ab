package engine

// Localized template answers for strategies that never touch the LLM,
// and fallbacks for when it is unreachable. English is the fallback
// for languages without their own entry.

var greetingTemplates = map[string]string{
	"en": "Hello! I'm your study assistant. Ask me anything about your study material.",
	"hi": "नमस्ते! मैं आपका अध्ययन सहायक हूँ। अपनी पाठ्य सामग्री के बारे में कुछ भी पूछिए।",
}

var clarificationTemplates = map[string]string{
	"en": "Could you rephrase your question with a bit more detail? For example, name the topic or chapter you are asking about.",
	"hi": "कृपया अपना प्रश्न थोड़ा और विस्तार से पूछिए। उदाहरण के लिए, जिस विषय या अध्याय के बारे में पूछ रहे हैं उसका नाम बताइए।",
}

var outOfScopeTemplates = map[string]string{
	"en": "I can only help with questions about your study material. Please ask me something related to your studies.",
	"hi": "मैं केवल आपकी पाठ्य सामग्री से जुड़े प्रश्नों में मदद कर सकता हूँ। कृपया पढ़ाई से संबंधित कुछ पूछिए।",
}

var noAnswerTemplates = map[string]string{
	"en": "I could not find this in your study material, and the answer service is currently unavailable. Please try again shortly.",
	"hi": "मुझे यह आपकी पाठ्य सामग्री में नहीं मिला, और उत्तर सेवा अभी उपलब्ध नहीं है। कृपया थोड़ी देर बाद फिर से प्रयास करें।",
}

// templateFor picks the localized text, falling back to English.
func templateFor(templates map[string]string, languageCode string) string {
	if text, ok := templates[languageCode]; ok {
		return text
	}
	return templates["en"]
}
