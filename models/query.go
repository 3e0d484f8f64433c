package models

// VertexFilter is a function type used to filter vertex views
type VertexFilter func(v *VertexView) bool

// EdgeFilter is a function type used to filter edge views
type EdgeFilter func(e *EdgeView) bool

// FilterVertices returns the vertices that match the provided filter function
func (f *Frame) FilterVertices(filter VertexFilter) []VertexView {
	var result []VertexView
	for i := range f.Vertices {
		if filter(&f.Vertices[i]) {
			result = append(result, f.Vertices[i])
		}
	}
	return result
}

// FilterEdges returns the edges that match the provided filter function
func (f *Frame) FilterEdges(filter EdgeFilter) []EdgeView {
	var result []EdgeView
	for i := range f.Edges {
		if filter(&f.Edges[i]) {
			result = append(result, f.Edges[i])
		}
	}
	return result
}

// RevealedVertices returns the vertices that have been an edge endpoint
func (f *Frame) RevealedVertices() []VertexView {
	return f.FilterVertices(func(v *VertexView) bool {
		return v.Opacity > 0
	})
}

// VisibleEdges returns the edges short enough to be drawn
func (f *Frame) VisibleEdges() []EdgeView {
	return f.FilterEdges(func(e *EdgeView) bool {
		return e.Visible
	})
}

// Complete reports whether every vertex pair was linked
func (f *Frame) Complete() bool {
	return f.EdgeCount == f.MaxEdges
}
