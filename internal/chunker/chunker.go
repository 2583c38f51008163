// Package chunker splits corpus documents into semantically bounded
// chunks along second-level markdown headings.
package chunker

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// DefaultMaxChunkLen is the default maximum chunk length in characters.
const DefaultMaxChunkLen = 1500

// slugMaxLen bounds the section slug used in chunk IDs.
const slugMaxLen = 48

// callSitePattern matches identifier-like substrings immediately
// followed by an opening parenthesis. Used as a call-site heuristic
// for keyword extraction.
var callSitePattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.]*)\(`)

// nonAlnumRun matches runs of non-alphanumeric characters for slug
// sanitisation.
var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// DefaultVocabulary is the fixed domain vocabulary scanned for
// keywords, matched case-insensitively against content words.
var DefaultVocabulary = []string{
	"embedding", "retrieval", "index", "chunk", "corpus",
	"tip", "payment", "wallet", "address", "price",
	"question", "answer", "thread", "cache", "fingerprint",
}

// Chunker splits a document into ordered chunks.
type Chunker struct {
	maxLen     int
	vocabulary []string
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxChunkLen sets the maximum chunk length in characters.
func WithMaxChunkLen(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxLen = n
		}
	}
}

// WithVocabulary replaces the keyword vocabulary.
func WithVocabulary(words []string) Option {
	return func(c *Chunker) {
		c.vocabulary = words
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxLen:     DefaultMaxChunkLen,
		vocabulary: DefaultVocabulary,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// section is an intermediate parse result before length bounding.
type section struct {
	title string
	body  string
}

// Chunk splits corpus text into ordered chunks. Sections are delimited
// by second-level markdown headings; a section body over the maximum
// length is re-split on paragraph boundaries. Chunking is
// deterministic: identical input yields identical ids, content, and
// order. Empty sections are skipped.
func (c *Chunker) Chunk(corpusText, sourceID string) []domain.Chunk {
	sections := splitSections(corpusText)

	var chunks []domain.Chunk
	for _, sec := range sections {
		body := strings.TrimSpace(sec.body)
		if body == "" {
			continue
		}

		parts := c.splitBody(body)
		slug := slugify(sec.title)

		for i, part := range parts {
			id := fmt.Sprintf("%s-%s", sourceID, slug)
			if len(parts) > 1 {
				id = fmt.Sprintf("%s-%d", id, i+1)
			}

			chunks = append(chunks, domain.Chunk{
				ID:       id,
				Source:   sourceID,
				Section:  sec.title,
				Content:  part,
				Keywords: c.extractKeywords(part),
			})
		}
	}

	return chunks
}

// splitSections parses the text into (title, body) pairs on "## "
// heading lines. Text before the first second-level heading is kept
// under the document's top-level heading, or "overview" when there is
// none.
func splitSections(text string) []section {
	lines := strings.Split(text, "\n")

	current := section{title: "overview"}
	var sections []section

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "## "):
			sections = append(sections, current)
			current = section{title: strings.TrimSpace(strings.TrimPrefix(line, "## "))}
		case strings.HasPrefix(line, "# ") && current.title == "overview" && strings.TrimSpace(current.body) == "":
			current.title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
		default:
			current.body += line + "\n"
		}
	}
	sections = append(sections, current)

	return sections
}

// splitBody bounds a section body to the maximum chunk length. Bodies
// within the limit stay whole; oversized bodies are split on paragraph
// boundaries, accumulating paragraphs until adding the next one would
// exceed the limit. A single paragraph that alone exceeds the limit is
// emitted as-is; there is no mid-paragraph splitting.
func (c *Chunker) splitBody(body string) []string {
	if len(body) <= c.maxLen {
		return []string{body}
	}

	paragraphs := splitParagraphs(body)

	var parts []string
	var buf strings.Builder

	for _, para := range paragraphs {
		if buf.Len() > 0 && buf.Len()+len(para)+2 > c.maxLen {
			parts = append(parts, strings.TrimSpace(buf.String()))
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(para)
	}
	if strings.TrimSpace(buf.String()) != "" {
		parts = append(parts, strings.TrimSpace(buf.String()))
	}

	return parts
}

// splitParagraphs splits on blank-line boundaries, dropping empties.
func splitParagraphs(body string) []string {
	raw := strings.Split(body, "\n\n")
	paragraphs := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// extractKeywords scans content for call-site identifiers and
// vocabulary words. The result is deduplicated; ordering is sorted
// only so results are stable for callers that display them.
func (c *Chunker) extractKeywords(content string) []string {
	seen := make(map[string]struct{})

	for _, match := range callSitePattern.FindAllStringSubmatch(content, -1) {
		seen[match[1]] = struct{}{}
	}

	lower := strings.ToLower(content)
	for _, word := range c.vocabulary {
		if containsWord(lower, strings.ToLower(word)) {
			seen[word] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	keywords := make([]string, 0, len(seen))
	for k := range seen {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}

// containsWord reports whether lower contains word bounded by
// non-letter characters.
func containsWord(lower, word string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(lower[start-1])
		afterOK := end == len(lower) || !isWordChar(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}

// slugify lowercases the title, collapses non-alphanumeric runs to a
// single separator, and truncates to a bounded length.
func slugify(title string) string {
	slug := nonAlnumRun.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "section"
	}
	if len(slug) > slugMaxLen {
		slug = strings.Trim(slug[:slugMaxLen], "-")
	}
	return slug
}
