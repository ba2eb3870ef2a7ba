// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"bytes"
	"errors"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/pdiddy/pubmed-mcp/pkg/types"
)

var (
	articleExpr  = xpath.MustCompile("/*//PubmedArticle")
	titleExpr    = xpath.MustCompile(".//ArticleTitle")
	abstractExpr = xpath.MustCompile(".//AbstractText")
)

// ParseArticles extracts one ArticleRecord per PubmedArticle element found at
// any depth below the root element, in document order. Each record takes the first ArticleTitle and
// the first AbstractText beneath the article; a missing element leaves the
// field nil. Text includes inline markup content (e.g. <i>, <sup>).
func ParseArticles(data []byte) ([]types.ArticleRecord, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := checkSingleRoot(doc); err != nil {
		return nil, err
	}

	records := []types.ArticleRecord{}
	for _, article := range xmlquery.QuerySelectorAll(doc, articleExpr) {
		records = append(records, types.ArticleRecord{
			Title:    firstText(article, titleExpr),
			Abstract: firstText(article, abstractExpr),
		})
	}
	return records, nil
}

func firstText(n *xmlquery.Node, expr *xpath.Expr) *string {
	match := xmlquery.QuerySelector(n, expr)
	if match == nil {
		return nil
	}
	return types.StringPtr(match.InnerText())
}

// checkSingleRoot rejects input that the decoder tolerates but is not a
// well-formed document: no element at all, more than one top-level element,
// or text outside the root element.
func checkSingleRoot(doc *xmlquery.Node) error {
	roots := 0
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case xmlquery.ElementNode:
			roots++
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(n.Data) != "" {
				return errors.New("junk after document element")
			}
		}
	}
	switch {
	case roots == 0:
		return errors.New("no root element")
	case roots > 1:
		return errors.New("junk after document element")
	}
	return nil
}
