// ABOUTME: MCP resource definitions
// ABOUTME: Provides read-only trip and point views for AI agents

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harper/wander/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/lo"
)

// Resource URIs.
const (
	TripsURI  = "wander://trips"
	PointsURI = "wander://points"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        TripsURI,
		Description: "All recorded trips, newest first, without GPS points",
		URI:         TripsURI,
		MIMEType:    "application/json",
	}, s.handleTripsResource)
	s.mcp.AddResource(&mcp.Resource{
		Name:        PointsURI,
		Description: "All saved points of interest",
		URI:         PointsURI,
		MIMEType:    "application/json",
	}, s.handlePointsResource)
}

func jsonResource(uri string, v interface{}) *mcp.ReadResourceResult {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		},
	}
}

func (s *Server) handleTripsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	trips, err := s.store.ListTrips(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	output := ListTripsOutput{
		Trips: lo.Map(trips, func(t *models.Trip, _ int) TripSummary { return summarize(t) }),
		Count: len(trips),
	}
	return jsonResource(TripsURI, output), nil
}

func (s *Server) handlePointsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	points, err := s.store.Points.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list points: %w", err)
	}
	return jsonResource(PointsURI, ListPointsOutput{Points: points, Count: len(points)}), nil
}
