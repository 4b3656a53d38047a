package taxonomy

import "strings"

// Parser turns taxonomy text into a forest.
type Parser struct {
	policy Policy
	stats  ParseStats
}

// ParseStats counts what the last Parse call saw.
type ParseStats struct {
	Lines    int // data lines processed
	Skipped  int // blank and comment lines
	Segments int // path segments examined
	Merged   int // segments that resolved to an existing node
	Orphaned int // non-root segments whose parent was not found
}

// Option configures a Parser.
type Option func(*Parser)

// WithPolicy sets the dedup policy. The default is ByName.
func WithPolicy(p Policy) Option {
	return func(ps *Parser) {
		if p != nil {
			ps.policy = p
		}
	}
}

// NewParser creates a parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{policy: ByName}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses text with the default name-based policy.
func Parse(text string) *Forest {
	return NewParser().Parse(text)
}

// Policy returns the parser's dedup policy.
func (p *Parser) Policy() Policy { return p.policy }

// Stats returns counters from the most recent Parse.
func (p *Parser) Stats() ParseStats { return p.stats }

// Parse reads one path per line. Ids are allocated in order of first
// appearance starting at 1. Parse never fails: malformed lines degrade into
// odd nodes (an empty segment becomes an empty title).
func (p *Parser) Parse(text string) *Forest {
	p.stats = ParseStats{}
	f := newForest()
	var nextID int64 = 1

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			p.stats.Skipped++
			continue
		}
		p.stats.Lines++

		segments := strings.Split(line, Delimiter)
		for i, title := range segments {
			p.stats.Segments++
			key := p.policy.Key(segments, i)
			if _, exists := f.Lookup(key); exists {
				p.stats.Merged++
				continue
			}

			var parentID int64
			if i > 0 {
				if parent, ok := f.Lookup(p.policy.Key(segments, i-1)); ok {
					parentID = parent.ID
				} else {
					// Unresolved parent: the node is promoted to a root.
					p.stats.Orphaned++
				}
			}

			f.add(key, Node{
				ID:       nextID,
				ParentID: parentID,
				Title:    title,
				Depth:    i + 1,
			})
			nextID++
		}
	}

	return f
}
