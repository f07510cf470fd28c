package chunker

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/scenedex/scenedex/pkg/types"
)

const (
	// DefaultMaxLines is the target maximum line count per chunk
	DefaultMaxLines = 50

	// DefaultWindowOverlap is the line overlap between consecutive chunks
	// in the generic sliding-window strategy
	DefaultWindowOverlap = 10

	// minDefinitionLines is how many lines a definition chunk must
	// accumulate before the next definition is allowed to close it
	minDefinitionLines = 5
)

// Definition-start patterns, matched against the trimmed line.
var (
	gdscriptDefPattern = regexp.MustCompile(`^(func\s+\w+|class\s+\w+|signal\s+\w+|extends\s+)`)
	clikeDefPattern    = regexp.MustCompile(`^(class\s+\w+|struct\s+\w+|\w+\s+\w+\s*\(|public\s+|private\s+|protected\s+)`)
)

// Extensions routed to the section strategy (declarative resource formats
// with [section] headers).
var sectionExts = map[string]bool{
	".tscn": true, ".scn": true, ".scene": true,
	".tres": true, ".res": true, ".resource": true,
}

// Extensions routed to the definition strategy, mapped to their pattern.
var definitionExts = map[string]*regexp.Regexp{
	".gd":     gdscriptDefPattern,
	".script": gdscriptDefPattern,
	".cs":     clikeDefPattern,
	".cpp":    clikeDefPattern,
	".h":      clikeDefPattern,
	".hpp":    clikeDefPattern,
	".c":      clikeDefPattern,
}

// Chunker splits raw file content into semantically bounded text chunks.
// The strategy is chosen per file extension: declarative resource files
// split at section headers, code files at definition starts, everything
// else falls back to a fixed sliding window.
type Chunker struct {
	maxLines int
	overlap  int
}

// New creates a Chunker with default limits.
func New() *Chunker {
	return &Chunker{maxLines: DefaultMaxLines, overlap: DefaultWindowOverlap}
}

// NewWithLimits creates a Chunker with explicit limits. Values <= 0 fall
// back to the defaults; overlap is clamped below maxLines so the window
// always advances.
func NewWithLimits(maxLines, overlap int) *Chunker {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	if overlap <= 0 {
		overlap = DefaultWindowOverlap
	}
	if overlap >= maxLines {
		overlap = maxLines - 1
	}
	return &Chunker{maxLines: maxLines, overlap: overlap}
}

// Chunk splits content into chunks. Line numbers are 1-indexed and
// inclusive; chunk indices are assigned in emission order starting at 0.
// Files at or below the line limit become a single chunk.
func (c *Chunker) Chunk(path, content string) []types.TextChunk {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")

	if len(lines) <= c.maxLines {
		return []types.TextChunk{{
			Index:     0,
			Content:   content,
			StartLine: 1,
			EndLine:   len(lines),
		}}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if sectionExts[ext] {
		return c.sectionChunks(lines)
	}
	if pattern, ok := definitionExts[ext]; ok {
		return c.definitionChunks(lines, pattern)
	}
	return c.windowChunks(lines)
}

// sectionChunks splits at each [section] header boundary. A chunk is one
// section: its header line through the line before the next header.
func (c *Chunker) sectionChunks(lines []string) []types.TextChunk {
	var chunks []types.TextChunk
	var section []string
	start := 1

	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "[") && len(section) > 0 {
			chunks = append(chunks, types.TextChunk{
				Index:     len(chunks),
				Content:   strings.Join(section, "\n"),
				StartLine: start,
				EndLine:   i,
			})
			section = []string{line}
			start = i + 1
		} else {
			section = append(section, line)
		}
	}
	if len(section) > 0 {
		chunks = append(chunks, types.TextChunk{
			Index:     len(chunks),
			Content:   strings.Join(section, "\n"),
			StartLine: start,
			EndLine:   len(lines),
		})
	}
	return chunks
}

// definitionChunks splits at definition-start lines. A chunk only closes
// once it holds more than minDefinitionLines lines, and is force-closed
// when it reaches maxLines regardless of where the next definition is.
func (c *Chunker) definitionChunks(lines []string, pattern *regexp.Regexp) []types.TextChunk {
	var chunks []types.TextChunk
	var current []string
	start := 1

	for i, line := range lines {
		if pattern.MatchString(strings.TrimSpace(line)) && len(current) > minDefinitionLines {
			chunks = append(chunks, types.TextChunk{
				Index:     len(chunks),
				Content:   strings.Join(current, "\n"),
				StartLine: start,
				EndLine:   i,
			})
			current = []string{line}
			start = i + 1
			continue
		}

		current = append(current, line)
		if len(current) >= c.maxLines {
			chunks = append(chunks, types.TextChunk{
				Index:     len(chunks),
				Content:   strings.Join(current, "\n"),
				StartLine: start,
				EndLine:   i + 1,
			})
			current = nil
			start = i + 2
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, types.TextChunk{
			Index:     len(chunks),
			Content:   strings.Join(current, "\n"),
			StartLine: start,
			EndLine:   len(lines),
		})
	}
	return chunks
}

// windowChunks is the generic fallback: fixed-size windows of maxLines
// lines advancing by (maxLines - overlap), so consecutive chunks share
// overlap lines of context.
func (c *Chunker) windowChunks(lines []string) []types.TextChunk {
	var chunks []types.TextChunk
	step := c.maxLines - c.overlap

	for i := 0; i < len(lines); i += step {
		end := i + c.maxLines
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, types.TextChunk{
			Index:     len(chunks),
			Content:   strings.Join(lines[i:end], "\n"),
			StartLine: i + 1,
			EndLine:   end,
		})
	}
	return chunks
}
