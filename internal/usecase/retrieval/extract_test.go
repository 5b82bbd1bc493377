package retrieval

import "testing"

func TestExtract_NodeContentPath(t *testing.T) {
	ext := defaultExtractor()
	meta := map[string]any{
		"_node_content": `{"metadata": {"text": "nested passage"}}`,
		"c_document_id": "pmid-42",
		"text":          "flat passage",
	}

	text, provenance, fellBack := ext.extract(meta)
	if fellBack {
		t.Error("expected the node content path, not the fallback")
	}
	if text != "nested passage" {
		t.Errorf("expected nested passage, got %q", text)
	}
	if provenance != "pmid-42" {
		t.Errorf("expected pmid-42, got %q", provenance)
	}
}

func TestExtract_FallbackOnMalformedNodeContent(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]any
	}{
		{
			"node content missing",
			map[string]any{"text": "flat", "c_document_id": "d1"},
		},
		{
			"node content not a string",
			map[string]any{"_node_content": 42, "text": "flat", "c_document_id": "d1"},
		},
		{
			"node content malformed json",
			map[string]any{"_node_content": `{"metadata": `, "text": "flat", "c_document_id": "d1"},
		},
		{
			"inner metadata missing text",
			map[string]any{"_node_content": `{"metadata": {}}`, "text": "flat", "c_document_id": "d1"},
		},
		{
			"inner text not a string",
			map[string]any{"_node_content": `{"metadata": {"text": 5}}`, "text": "flat", "c_document_id": "d1"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, provenance, fellBack := defaultExtractor().extract(tc.meta)
			if !fellBack {
				t.Error("expected the fallback path")
			}
			if text != "flat" {
				t.Errorf("expected flat, got %q", text)
			}
			if provenance != "d1" {
				t.Errorf("expected d1, got %q", provenance)
			}
		})
	}
}

func TestExtract_MissingEverything(t *testing.T) {
	// Data-quality degradation: empty strings, never a failure.
	text, provenance, fellBack := defaultExtractor().extract(map[string]any{})
	if !fellBack {
		t.Error("expected the fallback path")
	}
	if text != "" || provenance != "" {
		t.Errorf("expected empty values, got text=%q provenance=%q", text, provenance)
	}
}

func TestExtract_NilMetadata(t *testing.T) {
	text, provenance, _ := defaultExtractor().extract(nil)
	if text != "" || provenance != "" {
		t.Errorf("expected empty values, got text=%q provenance=%q", text, provenance)
	}
}

func TestExtract_ProvenanceSharedAcrossPaths(t *testing.T) {
	// Both extraction paths must read the same provenance field.
	nested := map[string]any{
		"_node_content": `{"metadata": {"text": "a"}}`,
		"c_document_id": "shared-id",
	}
	flat := map[string]any{
		"text":          "b",
		"c_document_id": "shared-id",
	}

	_, p1, _ := defaultExtractor().extract(nested)
	_, p2, _ := defaultExtractor().extract(flat)
	if p1 != "shared-id" || p2 != "shared-id" {
		t.Errorf("provenance differs across paths: %q vs %q", p1, p2)
	}
}

func TestExtract_NonStringProvenance(t *testing.T) {
	meta := map[string]any{
		"text":          "p",
		"c_document_id": float64(12345),
	}
	_, provenance, _ := defaultExtractor().extract(meta)
	if provenance != "12345" {
		t.Errorf("expected 12345, got %q", provenance)
	}
}

func TestExtract_CustomFieldNames(t *testing.T) {
	ext := extractor{
		nodeContentField: "payload",
		textField:        "body",
		provenanceField:  "source",
	}
	meta := map[string]any{
		"payload": `{"metadata": {"body": "custom nested"}}`,
		"source":  "src-1",
	}

	text, provenance, fellBack := ext.extract(meta)
	if fellBack {
		t.Error("expected the node content path")
	}
	if text != "custom nested" || provenance != "src-1" {
		t.Errorf("unexpected extraction: text=%q provenance=%q", text, provenance)
	}
}
