package scene

import "fmt"

// MaxLayers is the number of render layers a scene supports.
const MaxLayers = 32

// DefaultLayer is the layer every node starts on.
const DefaultLayer = 0

// Layers names render layers. Layer 0 is always "Default".
type Layers struct {
	names [MaxLayers]string
}

// NewLayers returns a table with only the default layer defined.
func NewLayers() *Layers {
	l := &Layers{}
	l.names[DefaultLayer] = "Default"
	return l
}

// Define assigns name to the first free layer and returns its index.
// Defining an existing name returns its index unchanged.
func (l *Layers) Define(name string) (int, error) {
	if name == "" {
		return -1, fmt.Errorf("layer name is empty")
	}
	if i, ok := l.LayerByName(name); ok {
		return i, nil
	}
	for i := range l.names {
		if l.names[i] == "" {
			l.names[i] = name
			return i, nil
		}
	}
	return -1, fmt.Errorf("no free layer for %q", name)
}

// LayerByName returns the index of a named layer.
func (l *Layers) LayerByName(name string) (int, bool) {
	if name == "" {
		return -1, false
	}
	for i, n := range l.names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// Name returns the name of a layer, or "" when undefined.
func (l *Layers) Name(layer int) string {
	if layer < 0 || layer >= MaxLayers {
		return ""
	}
	return l.names[layer]
}

// Mask returns the culling-mask bit for a layer.
func Mask(layer int) uint32 {
	if layer < 0 || layer >= MaxLayers {
		return 0
	}
	return 1 << uint(layer)
}
