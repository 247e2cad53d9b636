package canvas

// Extractor writes the world positions of one group of geometry into a
// shared position buffer. Texels the group does not cover are left as
// they are, so several extractors can write into the same buffer.
type Extractor interface {
	WriteWorldTexels(target Texture) error
	// Close releases anything the extractor allocated. It may be called
	// more than once.
	Close() error
}
