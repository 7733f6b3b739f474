package summarizer

import (
	"strings"
	"unicode/utf8"
)

// Splitter cuts text into chunks of at most ChunkSize runes, preferring to
// break on the earliest separator in Separators that occurs in the text.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// NewSplitter returns a splitter that breaks on paragraphs, then lines, then words.
func NewSplitter(chunkSize, chunkOverlap int) Splitter {
	if chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   []string{"\n\n", "\n", " ", ""},
	}
}

// Split returns the chunks of text in order. Blank text yields no chunks.
func (s Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if s.ChunkSize <= 0 || utf8.RuneCountInString(text) <= s.ChunkSize {
		return []string{text}
	}
	return s.split(text, s.Separators)
}

func (s Splitter) split(text string, separators []string) []string {
	sep, rest := "", []string(nil)
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep, rest = candidate, separators[i+1:]
			break
		}
	}
	if sep == "" {
		return s.splitRunes(text)
	}

	var parts []string
	for _, piece := range strings.Split(text, sep) {
		if utf8.RuneCountInString(piece) > s.ChunkSize {
			parts = append(parts, s.split(piece, rest)...)
			continue
		}
		parts = append(parts, piece)
	}
	return s.merge(parts, sep)
}

func (s Splitter) splitRunes(text string) []string {
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += s.ChunkSize {
		end := min(start+s.ChunkSize, len(runes))
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// merge packs parts into chunks joined by sep, carrying up to ChunkOverlap
// runes of trailing parts into the next chunk.
func (s Splitter) merge(parts []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)

	var (
		chunks  []string
		current []string
		size    int
	)
	flush := func() {
		if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		partLen := utf8.RuneCountInString(part)

		add := partLen
		if len(current) > 0 {
			add += sepLen
		}

		if size+add > s.ChunkSize && len(current) > 0 {
			flush()
			for len(current) > 0 && (size > s.ChunkOverlap || size+partLen+sepLen > s.ChunkSize) {
				size -= utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					size -= sepLen
				}
				current = current[1:]
			}
			add = partLen
			if len(current) > 0 {
				add += sepLen
			}
		}

		current = append(current, part)
		size += add
	}

	if len(current) > 0 {
		flush()
	}
	return chunks
}
