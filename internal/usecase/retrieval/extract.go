package retrieval

import (
	"encoding/json"
	"fmt"
)

// Default metadata field names as written by the ingestion pipeline.
const (
	defaultNodeContentField = "_node_content"
	defaultTextField        = "text"
	defaultProvenanceField  = "c_document_id"
)

// extractor pulls passage text and provenance out of raw match metadata.
type extractor struct {
	nodeContentField string
	textField        string
	provenanceField  string
}

func defaultExtractor() extractor {
	return extractor{
		nodeContentField: defaultNodeContentField,
		textField:        defaultTextField,
		provenanceField:  defaultProvenanceField,
	}
}

// extract returns (text, provenance) for one match. The primary path decodes
// the nested node-content payload and reads the text from its inner metadata;
// any decode or lookup failure falls back to the flat text field. Both paths
// read the same provenance field. Missing values degrade to the empty string
// rather than failing the match: a data-quality problem in one passage must
// not abort assembly.
func (e extractor) extract(meta map[string]any) (text string, provenance string, fellBack bool) {
	provenance = stringValue(meta[e.provenanceField])

	if t, ok := e.nodeContentText(meta); ok {
		return t, provenance, false
	}

	return stringValue(meta[e.textField]), provenance, true
}

// nodeContentText attempts the primary extraction path: the node-content
// field holds a separately JSON-encoded document payload whose inner
// metadata carries the passage text.
func (e extractor) nodeContentText(meta map[string]any) (string, bool) {
	raw, ok := meta[e.nodeContentField].(string)
	if !ok {
		return "", false
	}

	var node struct {
		Metadata map[string]any `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		return "", false
	}

	t, ok := node.Metadata[e.textField].(string)
	if !ok {
		return "", false
	}
	return t, true
}

// stringValue renders a metadata value as a string, tolerating the
// heterogeneous types a JSON mapping can carry. nil becomes "".
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
