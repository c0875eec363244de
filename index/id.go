package index

import (
	"fmt"

	"github.com/poiesic/veridoc/core"
)

// ContentID derives a deterministic chunk ID covering document identity
// and chunk position, so identical passages on different pages stay
// distinct and re-indexing a document reproduces the same IDs.
func ContentID(chunk *core.Chunk) core.ID {
	return core.IDFromContent(fmt.Sprintf("%s|%s|%d|%d|%s",
		chunk.Filename, chunk.DocType, chunk.PageNumber, chunk.ChunkIndex, chunk.Text))
}
