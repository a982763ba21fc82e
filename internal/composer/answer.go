package composer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"studyassistant/internal/models"
)

// NoRelevantInfoAnswer is returned when retrieval finds nothing for a query.
// This is a normal outcome, not an error.
const NoRelevantInfoAnswer = "I couldn't find relevant information in the PDF to answer your question. " +
	"Could you try rephrasing or asking about a different topic covered in the document?"

const answerPromptTemplate = `You are a helpful, friendly AI study assistant helping students understand their coursebook. Your goal is to provide comprehensive, conversational responses that truly help students learn.

Context from the student's PDF:
%s

Student's Question: %s

Instructions for your response:
1. Provide a COMPREHENSIVE, DETAILED answer (aim for 3-5 paragraphs minimum)
2. Use a friendly, conversational tone - like you're explaining to a friend
3. Break down complex concepts into understandable parts
4. Use examples from the text when available
5. Connect different ideas and show relationships between concepts
6. If the text mentions examples, exercises, or applications, discuss them
7. Add context that helps understanding (background, significance, real-world relevance)
8. If appropriate, suggest what the student should focus on or study next
9. Be thorough but clear - don't rush through the explanation
10. Base everything on the provided context - don't make up information

Format your response naturally:
- Start with a direct answer to the question
- Then expand with detailed explanation
- Use paragraph breaks for readability
- Include relevant examples or details from the text
- End with a helpful summary or next steps if appropriate

Remember: Students want to learn and understand deeply, not just get quick answers. Take your time to explain thoroughly!

Your detailed response:`

const legacyChatPromptTemplate = `Based on this context, answer the question in detail:

Context: %s

Question: %s

Provide a comprehensive answer:`

var sourceTagPattern = regexp.MustCompile(`\[Source \d+\]`)

// Deduplicate removes chunks whose first 200 characters match an earlier
// chunk's prefix, preserving retrieval order.
func Deduplicate(chunks []models.RetrievedChunk) []models.RetrievedChunk {
	seen := make(map[string]bool, len(chunks))
	var unique []models.RetrievedChunk
	for _, chunk := range chunks {
		preview := chunk.Content
		if len(preview) > 200 {
			preview = preview[:200]
		}
		preview = strings.TrimSpace(preview)
		if seen[preview] {
			continue
		}
		seen[preview] = true
		unique = append(unique, chunk)
	}
	return unique
}

// BuildContext assembles a labeled context block from at most the top 5
// chunks, along with the citations that accompany the answer regardless of
// which path produced it.
func BuildContext(chunks []models.RetrievedChunk) (string, []models.Citation) {
	if len(chunks) > 5 {
		chunks = chunks[:5]
	}

	var parts []string
	citations := make([]models.Citation, 0, len(chunks))
	for i, chunk := range chunks {
		parts = append(parts, fmt.Sprintf("[Source %d]: %s", i+1, chunk.Content))

		text := chunk.Content
		if len(text) > 300 {
			text = text[:300] + "..."
		}
		page := "Unknown"
		if chunk.Page > 0 {
			page = strconv.Itoa(chunk.Page)
		}
		citations = append(citations, models.Citation{
			Source: i + 1,
			Text:   text,
			Page:   page,
		})
	}
	return strings.Join(parts, "\n\n"), citations
}

// BuildAnswerPrompt fills the answer template with the context block and the
// student's question.
func BuildAnswerPrompt(contextBlock, query string) string {
	return fmt.Sprintf(answerPromptTemplate, contextBlock, query)
}

// BuildLegacyChatPrompt is the simpler template used by the legacy chat
// endpoint.
func BuildLegacyChatPrompt(contextBlock, query string) string {
	return fmt.Sprintf(legacyChatPromptTemplate, contextBlock, query)
}

// FallbackAnswer deterministically stitches an answer from the retrieved
// chunks when the provider is unavailable or fails.
func FallbackAnswer(chunks []models.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "I couldn't find enough information in the PDF to answer your question comprehensively."
	}

	top := chunks
	if len(top) > 3 {
		top = top[:3]
	}
	contents := make([]string, 0, len(top))
	for _, chunk := range top {
		contents = append(contents, chunk.Content)
	}
	combined := strings.Join(contents, "\n\n")
	if len(combined) > 1200 {
		combined = combined[:1200]
	}

	var answer strings.Builder
	answer.WriteString("Based on the content in your PDF, here's what I found:\n\n")
	answer.WriteString(combined)
	answer.WriteString("\n\n")
	if len(chunks) > 1 {
		answer.WriteString("This information comes from multiple sections of your document. ")
	}
	answer.WriteString("If you'd like me to explain any specific part in more detail, or if you have follow-up questions about this topic, feel free to ask! I'm here to help you understand the material better.")
	return answer.String()
}

// PadShortAnswer appends a raw excerpt from the top chunk when the provider's
// answer is implausibly short.
func PadShortAnswer(answer string, top models.RetrievedChunk) string {
	if len(answer) >= 200 {
		return answer
	}
	excerpt := top.Content
	if len(excerpt) > 600 {
		excerpt = excerpt[:600]
	}
	return answer + fmt.Sprintf("\n\nFor more context, here's what the material says:\n\n%s...", excerpt)
}

// StripSourceTags removes residual [Source N] labels from the final answer.
func StripSourceTags(answer string) string {
	return strings.TrimSpace(sourceTagPattern.ReplaceAllString(answer, ""))
}
