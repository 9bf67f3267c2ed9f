package services

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{}
	assert.NoError(t, ve.orNil())

	ve.add("title", "The title field is required.")
	ve.add("attachment", "The attachment field is required.")

	assert.Equal(t, "validation failed: attachment: The attachment field is required.; title: The title field is required.", ve.Error())
	assert.True(t, IsValidation(ve.orNil()))
	assert.False(t, IsValidation(errors.New("x")))
}

func TestParseDueTime(t *testing.T) {
	for _, ok := range []string{"2025-01-01", "2025-01-01 08:30:00", "2025-01-01T08:30:00+02:00", "2025-01-01T08:30"} {
		_, parsed := parseDueTime(ok)
		assert.True(t, parsed, ok)
	}
	for _, bad := range []string{"", "01/02/2025", "2025-13-01", "soon"} {
		_, parsed := parseDueTime(bad)
		assert.False(t, parsed, bad)
	}
}

func TestAttachmentRule_Check(t *testing.T) {
	rule := AttachmentRule{Required: true, Types: []string{"jpg", "jpeg", "png", "pdf", "docx"}}

	tests := []struct {
		name     string
		att      *Attachment
		wantType string
		wantErr  bool
	}{
		{"jpeg", file("photo.JPG", jpegBytes), "image/jpeg", false},
		{"png", file("scan.png", pngBytes), "image/png", false},
		{"pdf", file("r.pdf", pdfBytes), "application/pdf", false},
		{"png disguised as pdf", file("r.pdf", pngBytes), "", true},
		{"extension not allowed", file("x.exe", []byte("MZ")), "", true},
		{"no extension", file("README", []byte("hi")), "", true},
		{"missing", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{}
			got := rule.check(tt.att, ve)
			if tt.wantErr {
				require.Error(t, ve.orNil())
				return
			}
			require.NoError(t, ve.orNil())
			assert.Equal(t, tt.wantType, got)

			rest, err := io.ReadAll(tt.att.Body)
			require.NoError(t, err)
			assert.Equal(t, int(tt.att.Size), len(rest), "body must be rewound after sniffing")
		})
	}
}

func TestAttachmentRule_OptionalAndUnknownExtension(t *testing.T) {
	ve := &ValidationError{}
	AttachmentRule{Required: false, Types: []string{"png"}}.check(nil, ve)
	assert.NoError(t, ve.orNil())

	ve = &ValidationError{}
	got := AttachmentRule{Types: []string{"csv"}}.check(&Attachment{Filename: "d.csv", Size: 3, Body: bytes.NewReader([]byte("a,b"))}, ve)
	require.NoError(t, ve.orNil())
	assert.NotEmpty(t, got)
}
