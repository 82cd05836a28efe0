package ingest

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/savoir/internal/extract"
	"github.com/ppiankov/savoir/internal/model"
)

// OriginalsDir is where uploaded files are kept, relative to the base directory
var OriginalsDir = filepath.Join("data", "corpus", "originals")

// File saves an uploaded file under the originals directory and extracts
// its text. A name without extension gets one guessed from mimeType.
func File(baseDir, fileName string, data []byte, mimeType string) (*model.NewDocument, error) {
	fileName = filepath.Base(fileName)
	if filepath.Ext(fileName) == "" {
		fileName += extensionForMIME(mimeType)
	}

	saved, err := saveOriginal(baseDir, fileName, data)
	if err != nil {
		return nil, err
	}

	text, err := ExtractFile(filepath.Ext(fileName), data)
	if err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return &model.NewDocument{
		Title:       NormaliseTitle(strings.ReplaceAll(stem, "_", " ")),
		SourceType:  model.SourceFile,
		SourcePath:  saved,
		TextContent: text,
	}, nil
}

// ExtractFile returns the text of data according to its extension
func ExtractFile(ext string, data []byte) (string, error) {
	switch strings.ToLower(ext) {
	case ".txt", ".md", ".rtf":
		return strings.ToValidUTF8(string(data), ""), nil
	case ".docx":
		text, err := extract.DOCX(data)
		if err != nil {
			return "", fmt.Errorf("extract docx: %w", err)
		}
		return text, nil
	case ".pdf":
		text, err := extract.PDF(data)
		if err != nil {
			return "", fmt.Errorf("extract pdf: %w", err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func extensionForMIME(mimeType string) string {
	if mimeType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	switch mediaType {
	case "text/plain":
		return ".txt"
	case "text/markdown":
		return ".md"
	case "application/pdf":
		return ".pdf"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

func saveOriginal(baseDir, fileName string, data []byte) (string, error) {
	dir := filepath.Join(baseDir, OriginalsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create originals dir: %w", err)
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save original: %w", err)
	}
	return path, nil
}
