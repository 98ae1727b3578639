package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/quotegen/internal/quotes"
)

func toneValues() []string {
	out := make([]string, len(quotes.Tones))
	for i, t := range quotes.Tones {
		out[i] = t.Value
	}
	return out
}

// generateQuoteTool defines the generate_quote MCP tool.
var generateQuoteTool = mcp.NewTool("generate_quote",
	mcp.WithDescription("Generate a short quote about a topic in a given language and tone. The quote is written in the language's own script with an English translation, and is recorded in the generation history."),
	mcp.WithString("topic",
		mcp.Required(),
		mcp.Description("What the quote is about, e.g. Rain"),
	),
	mcp.WithString("language",
		mcp.Description("Language of the quote (default Bengali)"),
	),
	mcp.WithString("tone",
		mcp.Description("Tone preset (default inspirational)"),
		mcp.Enum(toneValues()...),
	),
)

// trendingTopicsTool defines the trending_topics MCP tool.
var trendingTopicsTool = mcp.NewTool("trending_topics",
	mcp.WithDescription("List the distinct topics of the most recent generations, newest first."),
)

// visitorCountTool defines the visitor_count MCP tool.
var visitorCountTool = mcp.NewTool("visitor_count",
	mcp.WithDescription("Get the total number of visitor sessions recorded by the site."),
)

// suggestLanguagesTool defines the suggest_languages MCP tool.
var suggestLanguagesTool = mcp.NewTool("suggest_languages",
	mcp.WithDescription("Suggest supported languages whose name contains the query, ignoring case."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Part of a language name"),
	),
)
