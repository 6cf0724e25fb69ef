package tool

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/hupe1980/autocrew/core"
)

type pdfFetchArgs struct {
	URL string `json:"url" description:"The URL of the PDF file"`
}

// NewPDFFetchTool returns the pdf_fetch built-in: download a PDF and extract
// its text per page. PDFs are given a longer fetch ceiling than HTML pages
// since reports and filings routinely run tens of megabytes.
func NewPDFFetchTool(client *http.Client) *FunctionTool {
	return NewFunctionToolFromStruct(
		"pdf_fetch",
		"Download a PDF from a URL and extract its text content. Use for PDF documents, reports, filings, etc.",
		pdfFetchArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			url, _ := args["url"].(string)

			body, err := fetch(toolCtx.Context(), client, url, 60*time.Second)
			if err != nil {
				return fmt.Sprintf("Error fetching PDF: %v", err), nil
			}

			text, err := extractPDFText(body)
			if err != nil {
				return fmt.Sprintf("Error parsing PDF: %v", err), nil
			}
			if text == "" {
				return "Error: no text found in PDF (may be image-based)", nil
			}
			return truncate(text), nil
		},
	).WithTimeout(2 * time.Minute)
}

// extractPDFText renders the document as "--- Page N ---" sections, skipping
// pages without extractable text.
func extractPDFText(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, fmt.Sprintf("--- Page %d ---\n%s", i, text))
	}
	return strings.Join(pages, "\n\n"), nil
}
