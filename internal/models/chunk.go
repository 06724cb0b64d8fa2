package models

// ChunkKind is the structural role of one line of an answer.
type ChunkKind int

const (
	ChunkText ChunkKind = iota
	ChunkHeader
	ChunkBullet
	ChunkNumbered
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkHeader:
		return "header"
	case ChunkBullet:
		return "bullet"
	case ChunkNumbered:
		return "numbered"
	default:
		return "text"
	}
}

// Chunk is one classified line of the final answer. Line is the original
// line verbatim; Text is its content without marker. Level is only set for
// headers.
type Chunk struct {
	Kind  ChunkKind `json:"kind"`
	Level int       `json:"level,omitempty"`
	Text  string    `json:"text"`
	Line  string    `json:"line"`
}
