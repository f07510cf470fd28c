// Package chunker divides raw file content into bounded text chunks for
// embedding and search.
//
// The strategy is selected per file extension so chunk boundaries follow the
// natural structure of each format instead of arbitrary line counts.
//
// # Basic Usage
//
//	c := chunker.New()
//	chunks := c.Chunk("scenes/main.tscn", content)
//
//	for _, chunk := range chunks {
//	    fmt.Printf("chunk %d: lines %d-%d\n",
//	        chunk.Index, chunk.StartLine, chunk.EndLine)
//	}
//
// # Strategies
//
// Files at or below the line limit (default 50) always become a single
// chunk. Larger files are split by one of three strategies:
//
//   - Section: declarative resource formats (.tscn, .scn, .scene, .tres,
//     .res, .resource) split at [section] headers; each chunk is one
//     section, header line through the line before the next header.
//   - Definition: code files (.gd, .script, .cs, .cpp, .h, .hpp, .c) split
//     at definition-start lines (func/class/signal/extends and C-like
//     declarations). A chunk only closes once it holds more than 5 lines,
//     and is force-closed at the line limit without waiting for the next
//     definition.
//   - Window: everything else falls back to fixed windows of the line
//     limit with a 10-line overlap between consecutive chunks.
//
// # Guarantees
//
// StartLine and EndLine are 1-indexed and inclusive. The chunks of one file
// cover it completely with no gaps; only the window strategy overlaps
// ranges. Chunk indices are assigned in emission order starting at 0, which
// is the order the store and search layers rely on.
package chunker
