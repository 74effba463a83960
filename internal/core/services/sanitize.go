// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package services

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// droppedSelector lists elements removed together with their content.
const droppedSelector = "script, style, iframe, object, embed, noscript"

// allowedElements are rendered with every attribute removed. Any other
// element is unwrapped and only its children are kept.
var allowedElements = map[string]bool{
	"p": true, "ul": true, "ol": true, "li": true, "strong": true, "em": true, "br": true,
}

// blockElements separate words when the markup is flattened to text.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "table": true, "tr": true, "td": true, "th": true,
	"section": true, "article": true, "header": true, "footer": true,
}

// SanitizeDescription reduces untrusted markup to the allow-listed subset
// and extracts its plain text. An empty text means the description carries
// nothing usable.
func SanitizeDescription(raw string) (safeHTML string, text string) {
	if strings.TrimSpace(raw) == "" {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", ""
	}
	doc.Find(droppedSelector).Remove()

	var markup, plain strings.Builder
	for _, n := range doc.Nodes {
		renderAllowed(&markup, n)
		renderText(&plain, n)
	}
	return strings.TrimSpace(markup.String()), strings.Join(strings.Fields(plain.String()), " ")
}

func renderAllowed(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(n.Data))
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if tag == "br" {
			b.WriteString("<br>")
			return
		}
		if allowedElements[tag] {
			b.WriteString("<" + tag + ">")
			renderChildren(b, n, renderAllowed)
			b.WriteString("</" + tag + ">")
			return
		}
		renderChildren(b, n, renderAllowed)
	case html.DocumentNode:
		renderChildren(b, n, renderAllowed)
	}
	// Comments and doctypes are dropped.
}

func renderText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
	case html.ElementNode:
		block := blockElements[strings.ToLower(n.Data)]
		if block {
			b.WriteByte(' ')
		}
		renderChildren(b, n, renderText)
		if block {
			b.WriteByte(' ')
		}
	case html.DocumentNode:
		renderChildren(b, n, renderText)
	}
}

func renderChildren(b *strings.Builder, n *html.Node, render func(*strings.Builder, *html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		render(b, c)
	}
}

// paragraph wraps plain text in a single escaped paragraph.
func paragraph(text string) string {
	return "<p>" + html.EscapeString(text) + "</p>"
}
