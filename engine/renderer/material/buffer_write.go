package material

// BufferWrite describes a single GPU buffer write operation targeting the uniform buffer
// bound to a property group resource at a given byte offset.
type BufferWrite struct {
	Resource string
	Binding  int
	Offset   uint64
	Data     []byte
}
