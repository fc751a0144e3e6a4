package validator

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

func newTestValidator() *UploadValidator {
	return NewUploadValidator(logger.NewTestLogger(), 1024, []string{".pdf", ".txt", ".DOCX"})
}

func TestValidate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name     string
		filename string
		size     int64
		wantType bool
		wantErr  bool
	}{
		{name: "supported pdf", filename: "report.pdf", size: 100},
		{name: "extension case folded", filename: "REPORT.TXT", size: 100},
		{name: "supported list case folded", filename: "spec.docx", size: 100},
		{name: "at size limit", filename: "big.txt", size: 1024},
		{name: "over size limit", filename: "big.txt", size: 1025, wantErr: true},
		{name: "unsupported extension", filename: "app.exe", size: 10, wantErr: true, wantType: true},
		{name: "no extension", filename: "README", size: 10, wantErr: true, wantType: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := &multipart.FileHeader{Filename: tt.filename, Size: tt.size}
			err := v.Validate(header)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantType {
				assert.ErrorIs(t, err, models.ErrUnsupportedFileType)
			}
		})
	}
}

// memFile gives a bytes.Reader the Close method multipart.File requires.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func TestContentHash(t *testing.T) {
	content := []byte("the quick brown fox")
	f := memFile{bytes.NewReader(content)}

	got, err := ContentHash(f)
	require.NoError(t, err)

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), got)

	// The reader is rewound so the upload can still be stored afterwards.
	rest, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, content, rest)
}
