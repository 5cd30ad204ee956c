// ABOUTME: MCP resource implementations for daily logs and trends.
// ABOUTME: Provides healthtrends://days/recent and healthtrends://trends/weekly resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/harperreed/healthtrends/internal/trends"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	recentDaysURI   = "healthtrends://days/recent"
	weeklyTrendsURI = "healthtrends://trends/weekly"

	recentDaysLimit = 14
)

func (s *Server) registerResources() {
	// healthtrends://days/recent - Last 14 logs for the default user
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentDaysURI,
		Name:        "Recent Daily Logs",
		Description: "Last 14 daily logs for the default user",
		MIMEType:    "application/json",
	}, s.handleRecentDaysResource)

	// healthtrends://trends/weekly - Weekly averages over the last 12 weeks
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         weeklyTrendsURI,
		Name:        "Weekly Trends",
		Description: "Weekly averages of every metric over the last 12 weeks",
		MIMEType:    "application/json",
	}, s.handleWeeklyTrendsResource)
}

// Resource handlers

func (s *Server) handleRecentDaysResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	logs, err := s.repo.ListLogs(s.defaultUser, nil, nil, recentDaysLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	days := make([]trends.RawRecord, 0, len(logs))
	for _, l := range logs {
		days = append(days, storage.WireRecord(l))
	}

	return jsonResource(recentDaysURI, map[string]interface{}{
		"user_id": s.defaultUser,
		"days":    days,
		"count":   len(days),
	})
}

func (s *Server) handleWeeklyTrendsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	q, err := s.trendQuery(getTrendsInput{})
	if err != nil {
		return nil, err
	}

	series, err := s.charts.Build(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to build trends: %w", err)
	}

	return jsonResource(weeklyTrendsURI, series)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
