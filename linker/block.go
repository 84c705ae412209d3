package linker

// Block is the external collaborator contract for a function body's
// control-flow block: it knows its own byte offset and can patch a call
// node once the callee is known. Bytecode interpretation itself -- what a
// call node actually does at run time -- is out of scope (spec.md §1).
type Block interface {
	StartOffset() int
	ResolveCallNode(controlTableOffset int) error
}

// BlockEntry is the linker's own Block implementation. Resolve is invoked
// by the Callsite Resolver's action once the callee Function's dependency
// (ImportFunction or CodeEntry) has run.
type BlockEntry struct {
	Resolve     func(controlTableOffset int) error
	startOffset int
}

// NewBlock creates a Block at startOffset whose call nodes are patched by
// resolve.
func NewBlock(startOffset int, resolve func(controlTableOffset int) error) *BlockEntry {
	return &BlockEntry{startOffset: startOffset, Resolve: resolve}
}

func (b *BlockEntry) StartOffset() int { return b.startOffset }

func (b *BlockEntry) ResolveCallNode(controlTableOffset int) error {
	if b.Resolve == nil {
		return nil
	}
	return b.Resolve(controlTableOffset)
}
