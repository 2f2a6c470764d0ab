package rag

// Localized pipeline messages for the two terminals that never reach
// the engine: rejected input and the error boundary. English is the
// fallback for unknown language codes.

var invalidMessages = map[string]string{
	"en": "I couldn't understand that question. Could you rephrase it?",
	"hi": "मैं यह प्रश्न समझ नहीं पाया। क्या आप इसे दोबारा पूछ सकते हैं?",
}

var errorMessages = map[string]string{
	"en": "Something went wrong while answering your question. Please try again.",
	"hi": "आपके प्रश्न का उत्तर देते समय कुछ गड़बड़ हो गई। कृपया फिर से प्रयास करें।",
}

func messageFor(messages map[string]string, languageCode string) string {
	if msg, ok := messages[languageCode]; ok {
		return msg
	}
	return messages["en"]
}
