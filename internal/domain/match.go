package domain

// NoRelevantContext is the reserved value returned when no match clears the
// score threshold. Callers must compare against this constant; it is never
// the empty string, so "no relevant context" stays distinguishable from an
// accidentally empty passage.
const NoRelevantContext = "No relevant context found."

// Match is one similarity hit returned by the vector index. Metadata is
// unstructured and produced entirely by the index service; it is validated
// only at the extraction boundary.
type Match struct {
	Score    float64
	Metadata map[string]any
}
