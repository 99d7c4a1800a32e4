package document

// Corpus is the merged view of every document in one resolution pass.
// Blocks preserves source order only for error reporting; resolution itself
// is order-independent.
type Corpus struct {
	Blocks []*Block
	index  map[string]*Block
}

// Merge combines documents into a single corpus, rejecting duplicate block
// identities. Which duplicate is reported first depends on document order;
// nothing else does.
func Merge(docs ...*Document) (*Corpus, error) {
	corpus := &Corpus{index: make(map[string]*Block)}
	for _, doc := range docs {
		for _, block := range doc.Blocks {
			id := block.Identity()
			if prev, ok := corpus.index[id]; ok {
				return nil, &DuplicateBlockError{
					Identity: id,
					First:    prev.DefRange,
					Second:   block.DefRange,
				}
			}
			corpus.index[id] = block
			corpus.Blocks = append(corpus.Blocks, block)
		}
	}
	return corpus, nil
}

// Lookup returns the block with the given identity key.
func (c *Corpus) Lookup(identity string) (*Block, bool) {
	b, ok := c.index[identity]
	return b, ok
}

// BlocksOfType returns every top-level block of the given type.
func (c *Corpus) BlocksOfType(blockType string) []*Block {
	var out []*Block
	for _, b := range c.Blocks {
		if b.Type == blockType {
			out = append(out, b)
		}
	}
	return out
}
