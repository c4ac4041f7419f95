package service

import (
	"bytes"
	"casepilot/internal/config"
	"casepilot/internal/model"
	"context"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// RendererService turns a business case into a PDF through a Gotenberg-style
// HTML-to-PDF service. Rendering is optional: with no service configured,
// RenderCase returns nil bytes and the case ships without an attachment.
type RendererService struct {
	config *config.RenderConfig
	client *http.Client
}

// NewRendererService creates a new renderer service
func NewRendererService(cfg *config.RenderConfig) *RendererService {
	return &RendererService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// RenderCase renders the case document to PDF bytes
func (s *RendererService) RenderCase(ctx context.Context, bc *model.BusinessCase) ([]byte, error) {
	if !s.config.IsEnabled() {
		return nil, nil
	}

	html, err := CaseHTML(bc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(html)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	url := s.config.BaseURL + "/forms/chromium/convert/html"
	req, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render service returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var caseTemplate = template.Must(template.New("case").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Business Case</title></head>
<body>
<h1>Business Case for {{.Name}}</h1>
<h2>Executive Summary</h2>
<ul>{{range .Content.ExecutiveSummary}}<li>{{.}}</li>{{end}}</ul>
<h2>Problem</h2>
<p>{{.Content.ProblemStatement}}</p>
<h2>Proposed Approach</h2>
<ol>{{range .Content.ProposedApproach}}<li>{{.}}</li>{{end}}</ol>
<h2>Market View</h2>
<p>{{.Content.MarketView}}</p>
<h2>Projections</h2>
<ul>{{range .Content.Projections}}<li>{{.}}</li>{{end}}</ul>
<h2>Risks</h2>
<ul>{{range .Content.Risks}}<li>{{.}}</li>{{end}}</ul>
<h2>Next Steps</h2>
<ol>{{range .Content.NextSteps}}<li>{{.}}</li>{{end}}</ol>
</body>
</html>`))

// CaseHTML renders the HTML document sent to the PDF service and used as the
// email body fallback
func CaseHTML(bc *model.BusinessCase) (string, error) {
	var out bytes.Buffer
	if err := caseTemplate.Execute(&out, bc); err != nil {
		return "", err
	}
	return out.String(), nil
}
