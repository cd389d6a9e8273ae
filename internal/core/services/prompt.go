package services

import (
	"strings"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// contextInstruction tells the generator to stay within the retrieved passages.
const contextInstruction = "Aşağıdaki BAĞLAMA dayanarak yanıt ver. Bağlamda olmayan bilgi ekleme. Belge adı/sayfa yazma."

// BuildPrompt assembles the generator prompt from the retrieved passages.
// Only the passage text is listed in the bulleted BAĞLAM block. Source and
// page metadata are left out so the generator cannot cite them.
func BuildPrompt(persona, styleGuard, userMessage string, passages []domain.RetrievalResult) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n")
	b.WriteString(styleGuard)

	if len(passages) > 0 {
		b.WriteString("\n---\n")
		b.WriteString(contextInstruction)
		b.WriteString("\nBAĞLAM:\n")
		for i, p := range passages {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- ")
			b.WriteString(p.Text)
		}
		b.WriteString("\n---")
	}

	b.WriteString("\n\nKullanıcı: ")
	b.WriteString(userMessage)
	b.WriteString("\nAyten:")
	return b.String()
}

// retryPrompt is the reduced prompt used after a meta reply.
func retryPrompt(styleGuard, userMessage string) string {
	return styleGuard + "\n\nKullanıcı: " + userMessage + "\nAyten:"
}

// metaMarkers are phrases that show the generator described an answer
// instead of giving one.
var metaMarkers = []string{
	"şu şekilde olacaktır",
	"taslak",
	"örnek yanıt",
	"meta",
	"şöyle cevap ver",
}

// isMetaReply reports whether reply contains a meta marker.
func isMetaReply(reply string) bool {
	lower := strings.ToLower(reply)
	for _, m := range metaMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
