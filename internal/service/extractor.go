package service

import (
	"regexp"
	"strings"

	"knowledgehub/internal/domain"
)

// ExtractionFallback replaces the extracted text when nothing usable could be
// pulled out of a document.
const ExtractionFallback = "No text content could be extracted from this document."

var (
	pdfStreamRe  = regexp.MustCompile(`(?s)stream\r?\n(.*?)endstream`)
	pdfShowRe    = regexp.MustCompile(`\(([^)]*)\)\s*Tj`)
	pdfShowArrRe = regexp.MustCompile(`\[([^\]]*)\]\s*TJ`)
	pdfLiteralRe = regexp.MustCompile(`\(([^)]*)\)`)
	docxRunRe    = regexp.MustCompile(`(?s)<w:t[^>]*>(.*?)</w:t>`)
	xmlTagRe     = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ExtractText converts raw document bytes into plain text based on the
// declared MIME type. Extraction is best-effort and never fails: unsupported
// types and empty results degrade to the fallback sentinel.
func ExtractText(data []byte, mimeType string) string {
	var text string
	switch mimeType {
	case domain.MIMETextPlain, domain.MIMETextCSV:
		text = string(data)
	case domain.MIMEPDF:
		text = extractPDF(data)
	case domain.MIMEDocx:
		text = extractDocx(data)
	}

	if strings.TrimSpace(text) == "" {
		return ExtractionFallback
	}
	return text
}

// extractPDF scans content streams for uncompressed text-showing operators.
// Compressed or font-remapped content is missed; that is a documented
// limitation of the heuristic, not a bug.
func extractPDF(data []byte) string {
	var parts []string

	for _, stream := range pdfStreamRe.FindAllSubmatch(data, -1) {
		content := stream[1]

		// (literal) Tj — show text
		for _, m := range pdfShowRe.FindAllSubmatch(content, -1) {
			parts = append(parts, string(m[1]))
		}

		// [(lit) n (lit) ...] TJ — show text with positioning
		for _, m := range pdfShowArrRe.FindAllSubmatch(content, -1) {
			literals := pdfLiteralRe.FindAllSubmatch(m[1], -1)
			if len(literals) == 0 {
				continue
			}
			var sb strings.Builder
			for _, lit := range literals {
				sb.Write(lit[1])
			}
			parts = append(parts, sb.String())
		}
	}

	text := strings.Join(parts, " ")
	text = strings.ReplaceAll(text, `\n`, "\n")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// extractDocx pulls the inner text of every text run tag out of the flattened
// document XML.
func extractDocx(data []byte) string {
	runs := docxRunRe.FindAllSubmatch(data, -1)
	if len(runs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(runs))
	for _, run := range runs {
		parts = append(parts, string(xmlTagRe.ReplaceAll(run[1], nil)))
	}
	return strings.Join(parts, " ")
}
