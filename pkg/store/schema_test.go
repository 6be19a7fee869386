package store

import (
	"testing"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

func TestParsePutRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr errors.Code
	}{
		{"valid", `{"sizes": [60, 40]}`, ""},
		{"with revision", `{"sizes": [20, 30, 50], "revision": "a1"}`, ""},
		{"missing sizes", `{"revision": "a1"}`, errors.ErrCodeInvalidInput},
		{"too few", `{"sizes": [100]}`, errors.ErrCodeInvalidInput},
		{"negative", `{"sizes": [-10, 110]}`, errors.ErrCodeInvalidInput},
		{"not numbers", `{"sizes": ["a", "b"]}`, errors.ErrCodeInvalidInput},
		{"unknown field", `{"sizes": [50, 50], "extra": 1}`, errors.ErrCodeInvalidInput},
		{"bad sum", `{"sizes": [50, 40]}`, errors.ErrCodeInvalidProportions},
		{"not json", `{`, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParsePutRequest([]byte(tt.body))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(req.Sizes) < 2 {
					t.Errorf("sizes = %v", req.Sizes)
				}
				return
			}
			if got := errors.GetCode(err); got != tt.wantErr {
				t.Errorf("code = %q, want %q (%v)", got, tt.wantErr, err)
			}
		})
	}
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"topology": "four-grid", "groups": {"rows": [40, 60], "row-1": [50, 50]}}`))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.Topology != "four-grid" || len(doc.Records()) != 2 {
		t.Errorf("doc = %+v", doc)
	}
	for _, r := range doc.Records() {
		if r.Topology != "four-grid" {
			t.Errorf("record topology = %s", r.Topology)
		}
	}

	bad := []string{
		`{"groups": {"rows": [50, 50]}}`,
		`{"topology": "four-grid", "groups": {}}`,
		`{"topology": "four/grid", "groups": {"rows": [50, 50]}}`,
		`{"topology": "four-grid", "groups": {"row/1": [50, 50]}}`,
		`{"topology": "four-grid", "groups": {"rows": [50, 45]}}`,
	}
	for _, b := range bad {
		if _, err := ParseDocument([]byte(b)); err == nil {
			t.Errorf("ParseDocument(%s) accepted", b)
		}
	}
}
