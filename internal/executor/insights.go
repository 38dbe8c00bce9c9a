package executor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/mhollis/agentbench/internal/models"
)

// ParseAnalysis decodes the analysis field of a live response into the
// structured insight list. The field may be a JSON array, a single JSON
// object, or a string of analysis prose with an embedded fenced code block.
// Decode failures are non-fatal: the run stays completed with no insights.
func ParseAnalysis(raw json.RawMessage) []models.Insight {
	if len(raw) == 0 {
		return nil
	}

	if insights, err := decodeInsights(raw); err == nil {
		return insights
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil
	}
	return ExtractInsights(text)
}

// ExtractInsights pulls the structured insight list out of analysis text.
// If the text contains a fenced code block, that block is parsed first; a
// direct parse of the whole text is attempted next; failing both, the
// insight list is empty. This function never fails.
func ExtractInsights(text string) []models.Insight {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if block := firstFencedBlock(text); block != "" {
		if insights, err := decodeInsights([]byte(block)); err == nil {
			return insights
		}
	}

	if insights, err := decodeInsights([]byte(text)); err == nil {
		return insights
	}
	return nil
}

// firstFencedBlock returns the contents of the first fenced code block in
// the markdown source, or "" when none exists.
func firstFencedBlock(src string) string {
	source := []byte(src)
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var block string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var sb strings.Builder
		lines := fc.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(source))
		}
		block = sb.String()
		return ast.WalkStop, nil
	})
	return block
}

// decodeInsights parses JSON as either an insight array or a single insight
// object (wrapped into a one-element list).
func decodeInsights(data []byte) ([]models.Insight, error) {
	var list []models.Insight
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var single models.Insight
	if err := json.Unmarshal(data, &single); err == nil && single != nil {
		return []models.Insight{single}, nil
	}

	return nil, fmt.Errorf("not an insight list")
}
