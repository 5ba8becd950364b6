package syntax

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"nixel/internal/source"
)

// Classifier owns the span tags of one buffer. Tags inside an edited range
// are stale until Reclassify runs over it.
type Classifier struct {
	file *source.File
	tags []Tag // sorted by Span.Start, non-overlapping
}

// NewClassifier scans the whole buffer and returns a fully tagged classifier.
func NewClassifier(f *source.File) *Classifier {
	c := &Classifier{file: f}
	c.Reclassify(0, c.contentLen())
	return c
}

// File returns the buffer this classifier is bound to.
func (c *Classifier) File() *source.File { return c.file }

func (c *Classifier) contentLen() uint32 {
	n, err := safecast.Conv[uint32](len(c.file.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return n
}

// Reclassify deletes every tag overlapping [start, end) and re-derives
// tags for the range. The range start is widened to the beginning of its
// line and the scan state there is recomputed from the buffer head, so
// stale tags never leak into the result. Running it twice over the same
// unedited range yields identical tags.
func (c *Classifier) Reclassify(start, end uint32) {
	if end > c.contentLen() {
		end = c.contentLen()
	}
	if start > end {
		start = end
	}
	// A boundary between the bytes of ${ or '' would let the seed scan
	// consume the straddling token whole and the rescan re-read its tail
	// under an already-advanced state. Tags never cross a newline, so the
	// line start is always a safe token boundary.
	start = lineStartBefore(c.file.Content, start)

	// Seed: lexical state just before the dirty range.
	var st State
	advance(c.file.Content, 0, start, &st, nil)

	fresh := make([]Tag, 0, 8)
	advance(c.file.Content, start, end, &st, func(s, e uint32, kind TagKind) {
		fresh = append(fresh, Tag{
			Span: source.Span{File: c.file.ID, Start: s, End: e},
			Kind: kind,
		})
	})

	// A token straddling `end` is consumed whole, so its tag may extend
	// past the requested range; old tags inside the actual scan extent
	// would duplicate fresh ones.
	scanEnd := end
	for _, t := range fresh {
		if t.Span.End > scanEnd {
			scanEnd = t.Span.End
		}
	}

	kept := c.tags[:0]
	for _, t := range c.tags {
		if t.Span.End <= start || t.Span.Start >= scanEnd {
			kept = append(kept, t)
		}
	}
	c.tags = append(kept, fresh...)
	sort.Slice(c.tags, func(i, j int) bool { return c.tags[i].Span.Start < c.tags[j].Span.Start })
}

// lineStartBefore returns the offset of the first byte of the line
// containing off.
func lineStartBefore(content []byte, off uint32) uint32 {
	for off > 0 && content[off-1] != '\n' {
		off--
	}
	return off
}

// Tags returns all tags in offset order. The slice aliases internal state.
func (c *Classifier) Tags() []Tag { return c.tags }

// TagsIn returns the tags whose span starts inside [start, end).
func (c *Classifier) TagsIn(start, end uint32) []Tag {
	lo := sort.Search(len(c.tags), func(i int) bool { return c.tags[i].Span.Start >= start })
	hi := sort.Search(len(c.tags), func(i int) bool { return c.tags[i].Span.Start >= end })
	return c.tags[lo:hi]
}

// TagAt returns the tag covering the byte offset, if any.
func (c *Classifier) TagAt(off uint32) (Tag, bool) {
	idx := sort.Search(len(c.tags), func(i int) bool { return c.tags[i].Span.End > off })
	if idx < len(c.tags) && c.tags[idx].Span.Contains(off) {
		return c.tags[idx], true
	}
	return Tag{}, false
}

// StateAt returns the lexical scan state at the byte offset, derived from a
// forward scan of the buffer head.
func (c *Classifier) StateAt(off uint32) State {
	var st State
	if off > c.contentLen() {
		off = c.contentLen()
	}
	advance(c.file.Content, 0, off, &st, nil)
	return st
}

// Advance walks the scan state from one offset to another. The caller owns
// st; offsets must satisfy from <= to.
func (c *Classifier) Advance(st *State, from, to uint32) {
	advance(c.file.Content, from, to, st, nil)
}
