package chunker

import "strings"

// CharacterChunker splits text into fixed-size overlapping character windows.
// Window boundaries are computed over runes so multi-byte text never gets cut
// mid-character.
type CharacterChunker struct {
	chunkSize    int
	chunkOverlap int
}

func NewCharacterChunker(chunkSize, chunkOverlap int) *CharacterChunker {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 4
	}
	return &CharacterChunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split returns overlapping windows of at most chunkSize runes, consecutive
// windows sharing chunkOverlap runes. Empty or whitespace-only text yields no
// chunks. Text shorter than one window yields exactly one chunk.
func (c *CharacterChunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []string{text}
	}
	step := c.chunkSize - c.chunkOverlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
