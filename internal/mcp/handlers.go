package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/quotegen/internal/docstore"
	"github.com/ziadkadry99/quotegen/internal/quotes"
	"github.com/ziadkadry99/quotegen/internal/trending"
)

// handleGenerateQuote generates and records a quote.
func (s *Server) handleGenerateQuote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := request.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: topic"), nil
	}

	rec, err := s.quotes.Generate(ctx, quotes.Request{
		Topic:    topic,
		Language: request.GetString("language", ""),
		Tone:     request.GetString("tone", ""),
	})
	switch {
	case err == nil:
		return mcp.NewToolResultText(rec.Quote), nil
	case errors.Is(err, quotes.ErrNotPersisted):
		return mcp.NewToolResultText(rec.Quote + "\n\n(not saved to history)"), nil
	case errors.Is(err, quotes.ErrTopicRequired), errors.Is(err, quotes.ErrUnknownTone):
		return mcp.NewToolResultError(err.Error()), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}
}

// handleTrendingTopics lists topics of the newest records.
func (s *Server) handleTrendingTopics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.store.QueryDescending(ctx, s.window, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading history failed: %v", err)), nil
	}

	topics := trending.DistinctTopics(records)
	if len(topics) == 0 {
		return mcp.NewToolResultText("No quotes have been generated yet."), nil
	}
	return mcp.NewToolResultText(strings.Join(topics, "\n")), nil
}

// handleVisitorCount reports the site visitor total.
func (s *Server) handleVisitorCount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.store.Stats(ctx, docstore.StatsGeneral)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading stats failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d", stats.VisitorCount)), nil
}

// handleSuggestLanguages filters the language catalog.
func (s *Server) handleSuggestLanguages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	langs := quotes.SuggestLanguages(query)
	if len(langs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No supported language matches %q. Any language name may still be used.", query)), nil
	}
	return mcp.NewToolResultText(strings.Join(langs, "\n")), nil
}
