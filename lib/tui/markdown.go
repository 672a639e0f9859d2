// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	markdownParser     goldmark.Markdown
	markdownParserOnce sync.Once
)

func inlineParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParser = goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify))
	})
	return markdownParser
}

// RenderInlineMarkdown renders markdown as a single styled line.
// Emphasis, strong, strikethrough, code spans, and links are styled;
// block structure is flattened, with line breaks and block boundaries
// becoming single spaces. Text that contains no markdown comes back
// unchanged apart from the base style.
func RenderInlineMarkdown(input string, theme Theme) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	source := []byte(input)
	document := inlineParser().Parser().Parse(text.NewReader(source))

	renderer := &inlineRenderer{source: source, theme: theme}
	ast.Walk(document, renderer.walk)
	return strings.TrimRight(renderer.output.String(), " ")
}

// inlineRenderer walks a goldmark AST and writes one line of styled
// text. Counters rather than booleans track nested emphasis.
type inlineRenderer struct {
	source []byte
	theme  Theme
	output strings.Builder

	boldCount          int
	italicCount        int
	strikethroughCount int
}

func (renderer *inlineRenderer) style() lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(renderer.theme.NormalText)
	if renderer.boldCount > 0 {
		style = style.Bold(true)
	}
	if renderer.italicCount > 0 {
		style = style.Italic(true)
	}
	if renderer.strikethroughCount > 0 {
		style = style.Strikethrough(true)
	}
	return style
}

// space writes a separator unless the line is empty or already ends
// in one.
func (renderer *inlineRenderer) space() {
	current := renderer.output.String()
	if current == "" || strings.HasSuffix(current, " ") {
		return
	}
	renderer.output.WriteByte(' ')
}

func (renderer *inlineRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := node.(type) {
	case *ast.Document:
	case *ast.Text:
		if entering {
			renderer.output.WriteString(renderer.style().Render(string(node.Segment.Value(renderer.source))))
			if node.SoftLineBreak() || node.HardLineBreak() {
				renderer.space()
			}
		}
	case *ast.String:
		if entering {
			renderer.output.WriteString(renderer.style().Render(string(node.Value)))
		}
	case *ast.Emphasis:
		delta := 1
		if !entering {
			delta = -1
		}
		if node.Level >= 2 {
			renderer.boldCount += delta
		} else {
			renderer.italicCount += delta
		}
	case *extast.Strikethrough:
		if entering {
			renderer.strikethroughCount++
		} else {
			renderer.strikethroughCount--
		}
	case *ast.CodeSpan:
		if entering {
			renderer.renderCodeSpan(node)
		}
		return ast.WalkSkipChildren, nil
	case *ast.Link:
		if !entering {
			if destination := string(node.Destination); destination != "" {
				renderer.output.WriteString(" " + lipgloss.NewStyle().
					Foreground(renderer.theme.FaintText).Render("("+destination+")"))
			}
		}
	case *ast.AutoLink:
		if entering {
			renderer.output.WriteString(lipgloss.NewStyle().
				Foreground(renderer.theme.AccentForeground).Render(string(node.URL(renderer.source))))
		}
		return ast.WalkSkipChildren, nil
	case *ast.Image:
		if entering {
			renderer.output.WriteString(lipgloss.NewStyle().
				Foreground(renderer.theme.FaintText).Render("[" + string(node.Text(renderer.source)) + "]"))
		}
		return ast.WalkSkipChildren, nil
	case *ast.RawHTML, *ast.HTMLBlock:
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			renderer.space()
			renderer.renderCodeLines(node)
			renderer.space()
		}
		return ast.WalkSkipChildren, nil
	default:
		// Block containers: paragraphs, headings, lists, quotes.
		if node.Type() == ast.TypeBlock {
			renderer.space()
		}
	}
	return ast.WalkContinue, nil
}

func (renderer *inlineRenderer) renderCodeSpan(node *ast.CodeSpan) {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			code.Write(child.Segment.Value(renderer.source))
		case *ast.String:
			code.Write(child.Value)
		}
	}
	renderer.output.WriteString(lipgloss.NewStyle().Foreground(renderer.theme.FaintText).Render(code.String()))
}

func (renderer *inlineRenderer) renderCodeLines(node ast.Node) {
	lines := node.Lines()
	parts := make([]string, 0, lines.Len())
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		if line := strings.TrimSpace(string(segment.Value(renderer.source))); line != "" {
			parts = append(parts, line)
		}
	}
	renderer.output.WriteString(lipgloss.NewStyle().Foreground(renderer.theme.FaintText).Render(strings.Join(parts, " ")))
}
