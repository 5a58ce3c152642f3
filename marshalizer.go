package bencode

// marshalizer adapts the typed bridge to the Marshal/Unmarshal interface
// shape used across the rest of the stack.
type marshalizer struct {
}

// NewMarshalizer creates a bencode marshalizer.
func NewMarshalizer() *marshalizer {
	return &marshalizer{}
}

// Marshal converts the object into its canonical bencode encoding.
func (m *marshalizer) Marshal(obj interface{}) ([]byte, error) {
	return Marshal(obj)
}

// Unmarshal parses buff and extracts the result into obj.
func (m *marshalizer) Unmarshal(obj interface{}, buff []byte) error {
	return Unmarshal(obj, buff)
}

// IsInterfaceNil returns true if there is no value under the interface
func (m *marshalizer) IsInterfaceNil() bool {
	return m == nil
}
