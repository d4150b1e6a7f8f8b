package textproc

import "strings"

// DefaultChunkWords keeps each summarization call well inside the model's context.
const DefaultChunkWords = 800

// Chunk splits text on whitespace into consecutive windows of size words.
// Windows partition the word sequence exactly; the last may be shorter.
// A non-positive size falls back to DefaultChunkWords.
func Chunk(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkWords
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+size-1)/size)
	for i := 0; i < len(words); i += size {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
