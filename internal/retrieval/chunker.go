package retrieval

import (
	"unicode"
)

// boundaryMarginDivisor sets the sentence search margin to the last 1/5 of a window.
const boundaryMarginDivisor = 5

// ChunkText splits text into overlapping windows of at most chunkSize characters.
// Cuts prefer sentence endings near the end of each window. Consecutive chunks
// overlap by up to overlap characters and start offsets strictly increase.
// Empty or whitespace-only text yields no chunks. A whitespace run inside the
// text is chunked like any other span, so no offset is left uncovered.
func ChunkText(text string, chunkSize, overlap int) ([]Chunk, error) {
	if err := validateChunking(chunkSize, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 || isBlank(runes) {
		return []Chunk{}, nil
	}

	chunks := make([]Chunk, 0, n/(chunkSize-overlap)+1)
	start := 0
	for {
		end := start + chunkSize
		if end >= n {
			end = n
		} else {
			end = sentenceCut(runes, start, end, chunkSize)
			// Attach a whitespace-only remainder to this chunk.
			if isBlank(runes[end:]) {
				end = n
			}
		}

		// Blank windows inside the text are kept so consecutive chunks stay contiguous.
		chunks = append(chunks, Chunk{
			Index:       len(chunks),
			StartOffset: start,
			EndOffset:   end,
			Text:        string(runes[start:end]),
		})

		if end >= n {
			break
		}

		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks, nil
}

// sentenceCut returns the cut position for the window [start, end).
// It looks backward over the trailing margin for '.', '?' or '!' followed by
// whitespace or end of text and cuts right after it. Without a match the
// window end is kept.
func sentenceCut(runes []rune, start, end, chunkSize int) int {
	margin := chunkSize / boundaryMarginDivisor
	if margin < 1 {
		margin = 1
	}
	lowest := end - margin
	if lowest < start {
		lowest = start
	}

	for i := end - 1; i >= lowest; i-- {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			return i + 1
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

func isBlank(runes []rune) bool {
	for _, r := range runes {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
