package utils

// SplitText cuts document content into overlapping chunks for embedding.
// Chunks are chunkSize runes with overlap runes shared between neighbours so
// a sentence straddling a boundary stays searchable. Character-based on
// purpose: the embedding providers here tokenize server-side.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		// an overlap >= chunkSize would loop forever
		step = chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
