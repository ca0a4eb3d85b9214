package pdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/interfaces"
)

// Extractor downloads portal attachments and extracts their text content
// using pdfcpu.
type Extractor struct {
	logger        arbor.ILogger
	httpClient    *http.Client
	userAgent     string
	attachmentDir string
	tempDir       string
}

// Compile-time interface assertion
var _ interfaces.PDFExtractor = (*Extractor)(nil)

// NewExtractor creates a new PDF extractor. Downloaded attachments are kept
// under attachmentDir; extraction scratch files go to the system temp dir.
func NewExtractor(attachmentDir, userAgent string, httpClient *http.Client, logger arbor.ILogger) *Extractor {
	tempDir := filepath.Join(os.TempDir(), "vigilo-pdf")
	os.MkdirAll(tempDir, 0755)
	os.MkdirAll(attachmentDir, 0755)

	return &Extractor{
		logger:        logger,
		httpClient:    httpClient,
		userAgent:     userAgent,
		attachmentDir: attachmentDir,
		tempDir:       tempDir,
	}
}

// Download fetches an attachment URL and stores it under the attachment
// directory with the given filename. Returns the stored file path.
func (e *Extractor) Download(ctx context.Context, url, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d downloading %s", resp.StatusCode, url)
	}

	path := filepath.Join(e.attachmentDir, sanitizeFilename(filename))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create attachment file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write attachment file: %w", err)
	}

	e.logger.Debug().
		Str("url", url).
		Str("path", path).
		Int64("bytes", written).
		Msg("Attachment downloaded")

	return path, nil
}

// ExtractText extracts text content from a PDF file on disk. pdfcpu has no
// direct text extraction, so page content streams are extracted to scratch
// files and concatenated.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return "", fmt.Errorf("read PDF context: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir, err := os.MkdirTemp(e.tempDir, "extract")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return "", fmt.Errorf("extract PDF content: %w", err)
	}

	pageTexts := make(map[int]string, pageCount)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}

		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err != nil {
				continue
			}
		}
		pageTexts[pageNum] = string(content)
	}

	pageNums := make([]int, 0, len(pageTexts))
	for num := range pageTexts {
		pageNums = append(pageNums, num)
	}
	sort.Ints(pageNums)

	var builder strings.Builder
	for i, num := range pageNums {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(pageTexts[num])
	}

	return builder.String(), nil
}

// sanitizeFilename strips path separators and other characters that are
// unsafe in stored attachment names.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"?", "_",
		"&", "_",
		"=", "_",
		" ", "_",
	)
	cleaned := replacer.Replace(name)
	if cleaned == "" {
		cleaned = "attachment.pdf"
	}
	return cleaned
}
