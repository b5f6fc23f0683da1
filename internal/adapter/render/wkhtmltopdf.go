package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/ports"
)

// commonBinaryPaths are probed when no explicit path is configured
var commonBinaryPaths = []string{
	"/usr/local/bin/wkhtmltopdf",
	"/usr/bin/wkhtmltopdf",
}

// WkhtmltopdfRenderer converts report markdown to PDF through the
// wkhtmltopdf subprocess
type WkhtmltopdfRenderer struct {
	binPath string
	logger  *logrus.Logger
}

// NewWkhtmltopdfRenderer creates a renderer. binPath may be empty, in which
// case the binary is located via common install paths and PATH.
func NewWkhtmltopdfRenderer(binPath string, logger *logrus.Logger) *WkhtmltopdfRenderer {
	return &WkhtmltopdfRenderer{binPath: binPath, logger: logger}
}

func (r *WkhtmltopdfRenderer) resolveBinary() (string, error) {
	if r.binPath != "" {
		if _, err := os.Stat(r.binPath); err == nil {
			return r.binPath, nil
		}
	}
	for _, p := range commonBinaryPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	if p, err := exec.LookPath("wkhtmltopdf"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("wkhtmltopdf not found: set WKHTMLTOPDF_PATH or add it to PATH")
}

// Render converts the markdown to HTML, writes a temporary HTML file, and
// invokes wkhtmltopdf to produce req.OutputPath
func (r *WkhtmltopdfRenderer) Render(ctx context.Context, req ports.RenderRequest) error {
	bin, err := r.resolveBinary()
	if err != nil {
		return err
	}

	body, err := markdownToHTML(req.Markdown)
	if err != nil {
		return err
	}

	extraCSS := ""
	if req.Stylesheet != "" {
		css, err := os.ReadFile(req.Stylesheet)
		if err != nil {
			return fmt.Errorf("failed to read stylesheet: %w", err)
		}
		extraCSS = string(css)
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp("", "incident-report-*.html")
	if err != nil {
		return fmt.Errorf("failed to create temporary HTML file: %w", err)
	}
	defer os.Remove(tmp.Name())

	doc := wrapDocument(req.Title, body, extraCSS)
	if _, err := tmp.WriteString(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary HTML file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary HTML file: %w", err)
	}

	args := []string{
		"--quiet",
		"--enable-local-file-access",
		"--margin-top", "20",
		"--margin-right", "20",
		"--margin-bottom", "20",
		"--margin-left", "20",
		tmp.Name(),
		req.OutputPath,
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("wkhtmltopdf failed: %w: %s", err, string(output))
	}

	r.logger.WithFields(logrus.Fields{
		"output": req.OutputPath,
		"binary": bin,
	}).Info("PDF report generated")

	return nil
}

// Validate checks that the wkhtmltopdf binary is present and runnable
func (r *WkhtmltopdfRenderer) Validate(ctx context.Context) error {
	bin, err := r.resolveBinary()
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, bin, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("wkhtmltopdf validation failed: %w", err)
	}
	return nil
}
