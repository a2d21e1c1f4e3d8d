package model

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*meshImpl)

// WithLabel sets the label the mesh buffers are created with.
//
// Parameters:
//   - label: the mesh name, e.g. "cube"
//
// Returns:
//   - MeshBuilderOption: a function that applies the label option to a mesh
func WithLabel(label string) MeshBuilderOption {
	return func(m *meshImpl) {
		m.label = label
	}
}

// BitmapBuilderOption is a functional option for configuring a Bitmap via NewBitmap.
type BitmapBuilderOption func(*bitmapImpl)

// WithBitmapLabel sets the label the bitmap buffers are created with.
//
// Parameters:
//   - label: the bitmap name
//
// Returns:
//   - BitmapBuilderOption: a function that applies the label option to a bitmap
func WithBitmapLabel(label string) BitmapBuilderOption {
	return func(b *bitmapImpl) {
		b.label = label
	}
}
