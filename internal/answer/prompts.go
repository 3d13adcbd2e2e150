package answer

import (
	"fmt"
	"strings"

	"realty-assistant/internal/retrieval"
)

const (
	historyTurns      = 2
	historyAnswerRune = 200
	summaryChunks     = 3
)

const systemPrompt = "You are an assistant that answers questions about real estate documents " +
	"such as settlement statements, purchase agreements and income verifications. " +
	"Respond with a single JSON object and nothing else."

const answerInstructions = `Please provide your response in the following JSON format:
{
    "answer": "Your detailed answer to the question",
    "confidence": 0.0-1.0,
    "reasoning": "Brief explanation of how you found the answer",
    "source_chunks": [list of chunk numbers that contained relevant information]
}

Guidelines:
- Only use information from the provided document excerpts
- If the answer is not in the excerpts, say so clearly
- Be specific and include relevant details like numbers, dates, names
- Quote directly from the document when appropriate
- Rate your confidence based on how well the excerpts support your answer
- Keep answers concise but comprehensive`

// formatExcerpts renders chunks as "[Chunk N]: text" blocks separated by blank lines.
func formatExcerpts(chunks []retrieval.ScoredChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, fmt.Sprintf("[Chunk %d]: %s", c.Index, c.Text))
	}
	return strings.Join(parts, "\n\n")
}

// withHistory frames question with the last turns of the conversation.
// The question is returned unchanged when there is no history.
func withHistory(question string, turns []Turn) string {
	if len(turns) == 0 {
		return question
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("Previous Q: %s\nPrevious A: %s...", t.Question, truncateRunes(t.Answer, historyAnswerRune)))
	}

	return fmt.Sprintf(
		"Given this conversation context:\n%s\n\nCurrent question: %s\n\nPlease answer the current question, taking into account the conversation context if relevant.",
		strings.Join(lines, "\n"), question,
	)
}

func buildAnswerPrompt(question string, chunks []retrieval.ScoredChunk) string {
	return fmt.Sprintf(
		"Based on the following document excerpts, please answer the user's question accurately and concisely.\n\nDOCUMENT EXCERPTS:\n%s\n\nQUESTION: %s\n\n%s",
		formatExcerpts(chunks), question, answerInstructions,
	)
}

func buildSummaryPrompt(chunks []retrieval.Chunk) string {
	if len(chunks) > summaryChunks {
		chunks = chunks[:summaryChunks]
	}
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}

	return fmt.Sprintf(`Please provide a concise summary of this document excerpt:

%s

Include:
1. Document type and purpose
2. Key information and details
3. Main parties or entities mentioned
4. Important dates, amounts, or numbers

Keep the summary under 200 words.`, strings.Join(texts, " "))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
