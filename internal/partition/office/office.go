// Package office partitions OOXML documents (DOCX, PPTX). Both formats are
// zip archives of XML parts; the partitioners stream the relevant parts with
// a token decoder instead of materializing full DOM trees.
package office

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// openArchive wraps the raw bytes as a zip reader.
func openArchive(content []byte) (*zip.Reader, error) {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("not a valid OOXML archive: %w", err)
	}
	return r, nil
}

// readPart returns the named archive entry's contents.
func readPart(archive *zip.Reader, name string) ([]byte, error) {
	for _, f := range archive.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("archive part %s not found", name)
}
