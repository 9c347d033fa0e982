// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Doc: close({
	name:  string & =~"^[a-z]+$"
	count: int | *1
})
`

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("decodes with defaults", func(t *testing.T) {
		t.Parallel()

		res, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "lb"`), "#Doc")
		if err != nil {
			t.Fatalf("ParseAndDecode() error = %v", err)
		}
		if res.Value.Name != "lb" || res.Value.Count != 1 {
			t.Errorf("decoded %+v, want {Name:lb Count:1}", *res.Value)
		}
	})

	t.Run("rejects unknown field", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte("name: \"lb\"\nextra: 1"), "#Doc",
			WithFilename("doc.cue"))
		if err == nil {
			t.Fatal("expected error for unknown field")
		}
		if !strings.Contains(err.Error(), "doc.cue") {
			t.Errorf("error should name the file, got: %v", err)
		}
	})

	t.Run("rejects schema violation", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "LB"`), "#Doc")
		if err == nil {
			t.Fatal("expected error for pattern mismatch")
		}
	})

	t.Run("enforces size limit", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "lb"`), "#Doc", WithMaxFileSize(2))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("expected size error, got %v", err)
		}
	})
}

func TestDecodeMap(t *testing.T) {
	t.Parallel()

	m, err := DecodeMap([]byte(testSchema), []byte(`name: "lb"`), "#Doc", WithConcrete(false))
	if err != nil {
		t.Fatalf("DecodeMap() error = %v", err)
	}
	if m["name"] != "lb" {
		t.Errorf("m[name] = %v, want lb", m["name"])
	}
}
