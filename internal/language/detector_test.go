package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect_Scripts(t *testing.T) {
	d := NewDetector(CodeEnglish)

	tests := []struct {
		name string
		text string
		code string
	}{
		{"hindi devanagari", "प्रकाश संश्लेषण क्या है", CodeHindi},
		{"bengali", "সালোকসংশ্লেষণ কী", CodeBengali},
		{"tamil", "ஒளிச்சேர்க்கை என்றால் என்ன", CodeTamil},
		{"telugu", "కిరణజన్య సంయోగక్రియ అంటే ఏమిటి", CodeTelugu},
		{"english question", "what is photosynthesis", CodeEnglish},
		{"mixed hindi english leans hindi", "DNA क्या है और कैसे काम करता है", CodeHindi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := d.Detect(tt.text)
			assert.Equal(t, tt.code, info.Code)
			assert.NotEmpty(t, info.Language)
			assert.Greater(t, info.Confidence, 0.0)
		})
	}
}

func TestDetect_NeverFails(t *testing.T) {
	d := NewDetector(CodeEnglish)

	for _, text := range []string{"", "   ", "12345", "?!?!", "\x00\x01"} {
		info := d.Detect(text)
		assert.Equal(t, CodeEnglish, info.Code, "input %q", text)
		assert.Equal(t, "English", info.Language)
	}
}

func TestDetect_FallbackUsesConfiguredDefault(t *testing.T) {
	d := NewDetector(CodeHindi)
	info := d.Detect("xyzzy plugh")
	assert.Equal(t, CodeHindi, info.Code)
	assert.Equal(t, "Hindi", info.Language)
}

func TestNewDetector_UnknownDefaultFallsBackToEnglish(t *testing.T) {
	d := NewDetector("xx")
	assert.Equal(t, CodeEnglish, d.Detect("").Code)
}

func TestDetect_Deterministic(t *testing.T) {
	d := NewDetector(CodeEnglish)
	a := d.Detect("DNA क्या है")
	b := d.Detect("DNA क्या है")
	assert.Equal(t, a, b)
}

func TestName(t *testing.T) {
	assert.Equal(t, "Tamil", Name(CodeTamil))
	assert.Equal(t, "zz", Name("zz"))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(CodeBengali))
	assert.False(t, Supported("fr"))
}
