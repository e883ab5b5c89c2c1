package index

// ChunkText splits text into fixed-size sliding windows of size runes with
// overlap runes shared between consecutive chunks. Chunking is deterministic:
// the same text and parameters always produce byte-identical chunks.
func ChunkText(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = 800
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 4
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
