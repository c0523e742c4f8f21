package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/aryanrai97861/cortexhub/tool"
)

// NewQueryTool exposes the retrieval service to the agent as a
// "query_documents" tool so the model can pull relevant snippets from the
// embedded corpus during a run.
func NewQueryTool(service *Service) (*tool.FunctionTool, error) {
	parameters := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query to run against the embedded documents",
			},
			"document_ids": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Optional document ids to restrict the search to",
			},
			"k": map[string]any{
				"type":        "integer",
				"description": "Number of snippets to return (default 4)",
			},
		},
		"required": []string{"query"},
	}

	return tool.NewFunctionTool(
		"query_documents",
		"Search the user's embedded documents for passages relevant to a query. Returns the most similar text snippets with their sources.",
		parameters,
		func(ctx context.Context, args map[string]any) (any, error) {
			query, _ := args["query"].(string)

			var documentIDs []string
			if raw, ok := args["document_ids"].([]any); ok {
				for _, v := range raw {
					if id, ok := v.(string); ok {
						documentIDs = append(documentIDs, id)
					}
				}
			}

			k := 0
			if n, ok := args["k"].(float64); ok {
				k = int(n)
			}

			snippets, err := service.QueryDocuments(ctx, query, documentIDs, k)
			if err != nil {
				return nil, err
			}
			if len(snippets) == 0 {
				return "No relevant passages found.", nil
			}

			var b strings.Builder
			for i, snippet := range snippets {
				fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, snippet.Source, snippet.Text)
			}
			return b.String(), nil
		},
	)
}
