package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"rfp-service/internal/database/minio"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// MinScopeTextLength is the threshold below which a proposal's local scope
// text is considered too short and document extraction is attempted.
const MinScopeTextLength = 50

// Service recovers plain text from submitted proposal PDFs. Strictly
// best-effort: every failure falls back to the locally available scope text.
type Service struct {
	minioClient *minio.MinioClient
	bucketName  string
}

func NewService(minioClient *minio.MinioClient) *Service {
	return &Service{
		minioClient: minioClient,
		bucketName:  minio.Storage.ProposalDocuments,
	}
}

// ExtractProposalText downloads the proposal document and pulls text out of
// its content streams.
func (s *Service) ExtractProposalText(ctx context.Context, objectKey string) (string, error) {
	if s == nil || s.minioClient == nil {
		return "", fmt.Errorf("extraction service is not configured")
	}

	obj, err := s.minioClient.GetFile(ctx, s.bucketName, objectKey)
	if err != nil {
		return "", fmt.Errorf("failed to get proposal document: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("failed to read proposal document: %w", err)
	}

	text, err := extractText(data)
	if err != nil {
		return "", err
	}

	slog.Info("Extracted proposal document text",
		"object_key", objectKey,
		"bytes_in", len(data),
		"chars_out", len(text))

	return text, nil
}

// textShowOperator matches the argument of Tj/TJ text-showing operators in a
// decoded PDF content stream.
var textShowOperator = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*(?:Tj|'|")|\[((?:\\.|[^\]])*)\]\s*TJ`)

var parenString = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)

func extractText(pdfData []byte) (string, error) {
	pdfCtx, err := api.ReadContext(bytes.NewReader(pdfData), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	if err := api.ValidateContext(pdfCtx); err != nil {
		return "", fmt.Errorf("failed to validate PDF: %w", err)
	}

	var builder strings.Builder
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		reader, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil {
			slog.Warn("Failed to extract page content, skipping page", "page", pageNr, "error", err)
			continue
		}
		if reader == nil {
			continue
		}

		content, err := io.ReadAll(reader)
		if err != nil {
			slog.Warn("Failed to read page content, skipping page", "page", pageNr, "error", err)
			continue
		}

		pageText := textFromContentStream(content)
		if pageText == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(pageText)
	}

	return strings.TrimSpace(builder.String()), nil
}

func textFromContentStream(content []byte) string {
	matches := textShowOperator.FindAllSubmatch(content, -1)
	if len(matches) == 0 {
		return ""
	}

	var parts []string
	for _, m := range matches {
		if len(m[1]) > 0 {
			parts = append(parts, unescapePDFString(string(m[1])))
			continue
		}
		// TJ takes an array interleaving strings with kerning numbers.
		for _, inner := range parenString.FindAllSubmatch(m[2], -1) {
			parts = append(parts, unescapePDFString(string(inner[1])))
		}
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}

var pdfEscapes = strings.NewReplacer(
	`\(`, "(",
	`\)`, ")",
	`\\`, `\`,
	`\n`, "\n",
	`\r`, "",
	`\t`, "\t",
)

func unescapePDFString(s string) string {
	return pdfEscapes.Replace(s)
}
