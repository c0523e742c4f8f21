package retrieval

import "strings"

// ChunkerOptions configures text splitting.
type ChunkerOptions struct {
	// ChunkSize is the target maximum chunk length in bytes.
	ChunkSize int
	// ChunkOverlap is how many trailing bytes of one chunk reappear at the
	// start of the next.
	ChunkOverlap int
}

// Chunker splits text recursively on progressively finer separators
// (paragraph, line, word, character) so chunks break at natural boundaries
// whenever possible.
type Chunker struct {
	size       int
	overlap    int
	separators []string
}

// NewChunker constructs a Chunker. Defaults: 1000-byte chunks with a
// 200-byte overlap.
func NewChunker(optFns ...func(o *ChunkerOptions)) *Chunker {
	opts := ChunkerOptions{ChunkSize: 1000, ChunkOverlap: 200}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ChunkSize < 1 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = opts.ChunkSize / 5
	}
	return &Chunker{
		size:       opts.ChunkSize,
		overlap:    opts.ChunkOverlap,
		separators: []string{"\n\n", "\n", " ", ""},
	}
}

// Split divides text into chunks of at most the configured size, preferring
// paragraph then line then word boundaries. Empty and whitespace-only chunks
// are dropped.
func (c *Chunker) Split(text string) []string {
	var out []string
	for _, chunk := range c.split(text, 0) {
		if strings.TrimSpace(chunk) != "" {
			out = append(out, chunk)
		}
	}
	return out
}

func (c *Chunker) split(text string, sepIdx int) []string {
	if len(text) <= c.size {
		return []string{text}
	}
	if sepIdx >= len(c.separators) {
		return c.hardSplit(text)
	}

	sep := c.separators[sepIdx]
	if sep == "" {
		return c.hardSplit(text)
	}

	parts := strings.Split(text, sep)
	var (
		out     []string
		current string
	)
	flush := func() {
		if current != "" {
			out = append(out, current)
			current = ""
		}
	}
	for _, part := range parts {
		piece := part
		if len(piece) > c.size {
			flush()
			out = append(out, c.split(piece, sepIdx+1)...)
			continue
		}
		candidate := piece
		if current != "" {
			candidate = current + sep + piece
		}
		if len(candidate) > c.size {
			flush()
			candidate = piece
			// Carry the overlap tail into the next chunk.
			if c.overlap > 0 && len(out) > 0 {
				prev := out[len(out)-1]
				if len(prev) > c.overlap {
					prev = prev[len(prev)-c.overlap:]
				}
				carried := prev + sep + piece
				if len(carried) <= c.size {
					candidate = carried
				}
			}
		}
		current = candidate
	}
	flush()
	return out
}

// hardSplit cuts text at fixed offsets when no separator fits.
func (c *Chunker) hardSplit(text string) []string {
	var out []string
	step := c.size - c.overlap
	if step < 1 {
		step = c.size
	}
	for start := 0; start < len(text); start += step {
		end := start + c.size
		if end > len(text) {
			end = len(text)
		}
		out = append(out, text[start:end])
		if end == len(text) {
			break
		}
	}
	return out
}
