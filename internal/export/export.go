// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders conversation transcripts to files.
//
// Three formats are supported: markdown for reading and re-importing into
// notes, json for tooling, and a standalone html page with highlighted code
// blocks.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/localmind/localmind-tui/internal/model"
	"github.com/localmind/localmind-tui/internal/util"
)

// Format identifies an export output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat parses a format name, accepting common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatHTML:
		return "html"
	default:
		return "md"
	}
}

// Render renders a transcript in the given format.
func Render(format Format, conv model.Conversation, msgs []model.Message) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return renderMarkdown(conv, msgs), nil
	case FormatJSON:
		return renderJSON(conv, msgs)
	case FormatHTML:
		return renderHTML(conv, msgs), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// Write renders the transcript and writes it atomically under dir. Returns
// the full path of the written file.
func Write(dir string, format Format, conv model.Conversation, msgs []model.Message) (string, error) {
	data, err := Render(format, conv, msgs)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(conv, format, time.Now()))
	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// FileName builds a stable export file name from the conversation title.
func FileName(conv model.Conversation, format Format, now time.Time) string {
	slug := slugify(conv.Title)
	if slug == "" {
		slug = "conversation"
	}
	return fmt.Sprintf("%s-%s.%s", slug, now.Format("20060102-150405"), format.Ext())
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// =============================================================================
// MARKDOWN
// =============================================================================

func renderMarkdown(conv model.Conversation, msgs []model.Message) []byte {
	var b strings.Builder

	title := conv.Title
	if title == "" {
		title = "Conversation"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Mode: %s\n\n", conv.Mode.DisplayName())

	for _, msg := range msgs {
		fmt.Fprintf(&b, "## %s\n\n", msg.Sender.DisplayName())
		b.WriteString(strings.TrimRight(msg.Text, "\n"))
		b.WriteString("\n\n")
	}

	return []byte(b.String())
}

// =============================================================================
// JSON
// =============================================================================

// jsonExport is the top-level structure of a JSON transcript export.
type jsonExport struct {
	Conversation model.Conversation `json:"conversation"`
	Messages     []model.Message    `json:"messages"`
	ExportedAt   time.Time          `json:"exported_at"`
}

func renderJSON(conv model.Conversation, msgs []model.Message) ([]byte, error) {
	if msgs == nil {
		msgs = []model.Message{}
	}
	out := jsonExport{
		Conversation: conv,
		Messages:     msgs,
		ExportedAt:   time.Now().UTC(),
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}
	return append(data, '\n'), nil
}

// =============================================================================
// HTML
// =============================================================================

const htmlPrologue = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
.message { margin-bottom: 1.5rem; }
.sender { font-weight: bold; margin-bottom: 0.25rem; }
.sender.user { color: #2457a0; }
.sender.assistant { color: #267045; }
.text { white-space: pre-wrap; }
pre.chroma { padding: 0.75rem; overflow-x: auto; border-radius: 4px; }
</style>
</head>
<body>
<h1>%s</h1>
<p class="mode">%s</p>
`

func renderHTML(conv model.Conversation, msgs []model.Message) []byte {
	var b bytes.Buffer

	title := conv.Title
	if title == "" {
		title = "Conversation"
	}
	fmt.Fprintf(&b, htmlPrologue,
		html.EscapeString(title),
		html.EscapeString(title),
		html.EscapeString(conv.Mode.DisplayName()))

	for _, msg := range msgs {
		senderClass := "assistant"
		if msg.Sender == model.SenderUser {
			senderClass = "user"
		}
		fmt.Fprintf(&b, "<div class=\"message\">\n<div class=\"sender %s\">%s</div>\n",
			senderClass, html.EscapeString(msg.Sender.DisplayName()))
		writeHTMLBody(&b, msg.Text)
		b.WriteString("</div>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.Bytes()
}

// writeHTMLBody renders message text, highlighting fenced code blocks.
func writeHTMLBody(b *bytes.Buffer, text string) {
	lines := strings.Split(text, "\n")
	var plain []string
	var code []string
	var language string
	inCode := false

	flushPlain := func() {
		if len(plain) == 0 {
			return
		}
		fmt.Fprintf(b, "<div class=\"text\">%s</div>\n",
			html.EscapeString(strings.Join(plain, "\n")))
		plain = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			if inCode {
				writeHighlighted(b, strings.Join(code, "\n"), language)
				code = nil
				language = ""
				inCode = false
			} else {
				flushPlain()
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inCode = true
			}
			continue
		}
		if inCode {
			code = append(code, line)
		} else {
			plain = append(plain, line)
		}
	}

	// Unclosed fence: render what arrived, mid-stream cancellations can
	// leave transcripts exactly like this.
	if inCode && len(code) > 0 {
		flushPlain()
		writeHighlighted(b, strings.Join(code, "\n"), language)
		return
	}
	flushPlain()
}

// writeHighlighted writes a chroma-highlighted code block, falling back to
// an escaped <pre> when highlighting fails.
func writeHighlighted(b *bytes.Buffer, code, language string) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := chromahtml.New(chromahtml.WithClasses(false), chromahtml.Standalone(false))

	iterator, err := lexer.Tokenise(nil, code)
	if err == nil && formatter.Format(b, style, iterator) == nil {
		return
	}
	fmt.Fprintf(b, "<pre>%s</pre>\n", html.EscapeString(code))
}
