package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/fitforge/fitkit/fitkit"
)

// defaultSearchCorpus is the canned result set for the offline search
// tool. Keys are matched case-insensitively against the query.
var defaultSearchCorpus = map[string]string{
	"faang": "Here are the headcounts for each of the FAANG companies in 2024:\n" +
		"1. **Facebook (Meta)**: 67,317 employees.\n" +
		"2. **Apple**: 164,000 employees.\n" +
		"3. **Amazon**: 1,551,000 employees.\n" +
		"4. **Netflix**: 14,000 employees.\n" +
		"5. **Google (Alphabet)**: 181,269 employees.",
	"weather": "Today's weather is sunny with a temperature of 72°F.",
	"news":    "Latest tech news: AI developments continue to accelerate across industries.",
}

// NewSearchTool returns an offline web-search stand-in that answers from
// a canned corpus, so demos need no network access. A nil corpus uses the
// built-in one.
func NewSearchTool(corpus map[string]string) fitkit.Tool {
	if corpus == nil {
		corpus = defaultSearchCorpus
	}
	tool, _ := NewFuncTool(
		"web_search",
		"Search the web for information.",
		ObjectSchema([]string{"query"}, map[string]map[string]interface{}{
			"query": {"type": "string", "description": "Search query"},
		}),
		func(ctx context.Context, args map[string]interface{}) (*fitkit.ToolResult, error) {
			query := String(args, "query", "")
			if query == "" {
				return fitkit.NewToolError("missing argument \"query\""), nil
			}
			lowered := strings.ToLower(query)
			for key, result := range corpus {
				if strings.Contains(lowered, key) {
					return fitkit.NewToolResult(result), nil
				}
			}
			return fitkit.NewToolResult(fmt.Sprintf("Mock search results for: %s", query)), nil
		},
	)
	return tool
}
