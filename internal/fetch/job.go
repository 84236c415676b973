package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Stdin is the source name that reads the job description from standard input.
const Stdin = "-"

// JobDescription returns the plain text of a job posting. source is a file path, Stdin or
// an http(s) URL. HTML pages are reduced to the posting body; when opts.UseBrowser is set
// and plain HTTP yields too little text, the page is rendered in headless Chrome.
func JobDescription(ctx context.Context, source string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	var (
		text string
		err  error
	)
	switch {
	case source == Stdin:
		text, err = readAll(source, os.Stdin)
	case IsURL(source):
		text, err = fromURL(ctx, source, opts)
	default:
		text, err = fromFile(source)
	}
	if err != nil {
		return "", err
	}

	text = cleanJobText(text)
	if text == "" {
		return "", &Error{Source: source, Message: "job description is empty"}
	}
	return text, nil
}

func fromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &Error{Source: path, Message: "failed to open file", Cause: err}
	}
	defer func() { _ = f.Close() }()
	return readAll(path, f)
}

func readAll(source string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes))
	if err != nil {
		return "", &Error{Source: source, Message: "failed to read", Cause: err}
	}
	return string(data), nil
}

func fromURL(ctx context.Context, rawURL string, opts *Options) (string, error) {
	platform := DetectPlatform(rawURL)
	slog.DebugContext(ctx, "fetching job posting", "url", rawURL, "platform", platform)

	page, err := URL(ctx, rawURL, opts)
	if err != nil {
		var fetchErr *Error
		if !opts.UseBrowser || !errors.As(err, &fetchErr) || page == nil {
			return "", err
		}
		// some boards answer plain clients with 403 but render fine in a browser
		slog.DebugContext(ctx, "plain fetch failed, trying browser", "url", rawURL, "error", err)
		return renderAndExtract(ctx, rawURL, platform, opts)
	}
	if !page.IsHTML() {
		return page.Body, nil
	}

	text, err := ExtractText(page.Body, ContentSelectors(platform), NoiseSelectors(platform)...)
	if err != nil {
		return "", &Error{Source: rawURL, Message: "failed to extract text", Cause: err}
	}
	if opts.UseBrowser && NeedsBrowser(text) {
		return renderAndExtract(ctx, rawURL, platform, opts)
	}
	return text, nil
}

func renderAndExtract(ctx context.Context, rawURL string, platform Platform, opts *Options) (string, error) {
	html, err := Render(ctx, rawURL, opts.Timeout)
	if err != nil {
		return "", &Error{Source: rawURL, Message: "browser fetch failed", Cause: err}
	}
	text, err := ExtractText(html, ContentSelectors(platform), NoiseSelectors(platform)...)
	if err != nil {
		return "", &Error{Source: rawURL, Message: "failed to extract text", Cause: err}
	}
	return text, nil
}

// cleanJobText normalizes line endings, trims trailing whitespace and keeps at most one blank
// line between paragraphs. Indentation is kept so nested lists survive.
func cleanJobText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if !blank && len(cleaned) > 0 {
				cleaned = append(cleaned, "")
			}
			blank = true
			continue
		}
		blank = false
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
