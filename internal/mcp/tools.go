// ABOUTME: MCP tool definitions and handlers
// ABOUTME: Lets AI agents browse trips, annotate them and manage points of interest

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/lo"
)

func (s *Server) registerTools() {
	s.registerListTripsTool()
	s.registerGetTripTool()
	s.registerUpdateTripNoteTool()
	s.registerDeleteTripTool()
	s.registerGetStatsTool()
	s.registerAddPointTool()
	s.registerListPointsTool()
}

func textResult(v interface{}) *mcp.CallToolResult {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonBytes)}},
	}
}

// TripSummary describes a trip without its points.
type TripSummary struct {
	ID            int64   `json:"id"`
	Date          string  `json:"date"`
	DurationMs    int64   `json:"duration_ms"`
	DistanceKm    float64 `json:"distance_km"`
	ElevationGain int     `json:"elevation_gain"`
	ElevationLoss int     `json:"elevation_loss"`
	PointCount    int     `json:"point_count"`
	Note          string  `json:"note,omitempty"`
}

func summarize(t *models.Trip) TripSummary {
	return TripSummary{
		ID:            t.ID,
		Date:          t.Date,
		DurationMs:    t.Duration,
		DistanceKm:    t.Distance,
		ElevationGain: t.ElevationGain,
		ElevationLoss: t.ElevationLoss,
		PointCount:    len(t.Points),
		Note:          t.Note,
	}
}

// ListTripsInput defines input for list_trips tool.
type ListTripsInput struct {
	Limit int `json:"limit,omitempty"`
}

// ListTripsOutput defines output for list_trips tool.
type ListTripsOutput struct {
	Trips []TripSummary `json:"trips"`
	Count int           `json:"count"`
}

func (s *Server) registerListTripsTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_trips",
		Description: "List recorded trips, newest first, without their GPS points.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of trips to return (default all)",
				},
			},
		},
	}, s.handleListTrips)
}

func (s *Server) handleListTrips(ctx context.Context, req *mcp.CallToolRequest, input ListTripsInput) (*mcp.CallToolResult, ListTripsOutput, error) {
	trips, err := s.store.ListTrips(ctx)
	if err != nil {
		return nil, ListTripsOutput{}, fmt.Errorf("failed to list trips: %w", err)
	}
	if input.Limit > 0 && len(trips) > input.Limit {
		trips = trips[:input.Limit]
	}

	output := ListTripsOutput{
		Trips: lo.Map(trips, func(t *models.Trip, _ int) TripSummary { return summarize(t) }),
		Count: len(trips),
	}
	return textResult(output), output, nil
}

// TripInput identifies a trip.
type TripInput struct {
	ID            int64 `json:"id"`
	IncludePoints bool  `json:"include_points,omitempty"`
}

// TripOutput defines output for get_trip tool.
type TripOutput struct {
	Trip   TripSummary         `json:"trip"`
	Points []models.TrackPoint `json:"points,omitempty"`
}

func (s *Server) registerGetTripTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_trip",
		Description: "Get one trip by id, optionally with its GPS points.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Trip id (milliseconds since epoch at the end of the trip)",
				},
				"include_points": map[string]interface{}{
					"type":        "boolean",
					"description": "Include the recorded GPS points",
				},
			},
			"required": []string{"id"},
		},
	}, s.handleGetTrip)
}

func (s *Server) handleGetTrip(ctx context.Context, req *mcp.CallToolRequest, input TripInput) (*mcp.CallToolResult, TripOutput, error) {
	trip, err := s.store.Trips.Get(ctx, input.ID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, TripOutput{}, fmt.Errorf("trip %d not found", input.ID)
		}
		return nil, TripOutput{}, fmt.Errorf("failed to get trip: %w", err)
	}

	output := TripOutput{Trip: summarize(trip)}
	if input.IncludePoints {
		output.Points = trip.Points
	}
	return textResult(output), output, nil
}

// UpdateTripNoteInput defines input for update_trip_note tool.
type UpdateTripNoteInput struct {
	ID   int64  `json:"id"`
	Note string `json:"note"`
}

func (s *Server) registerUpdateTripNoteTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update_trip_note",
		Description: "Replace the note attached to a trip. An empty note clears it.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Trip id",
				},
				"note": map[string]interface{}{
					"type":        "string",
					"description": "New note text",
				},
			},
			"required": []string{"id", "note"},
		},
	}, s.handleUpdateTripNote)
}

func (s *Server) handleUpdateTripNote(ctx context.Context, req *mcp.CallToolRequest, input UpdateTripNoteInput) (*mcp.CallToolResult, TripSummary, error) {
	trip, err := s.store.UpdateTripNote(ctx, input.ID, input.Note)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, TripSummary{}, fmt.Errorf("trip %d not found", input.ID)
		}
		return nil, TripSummary{}, fmt.Errorf("failed to update trip: %w", err)
	}
	output := summarize(trip)
	return textResult(output), output, nil
}

// DeleteOutput defines output for delete tools.
type DeleteOutput struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

func (s *Server) registerDeleteTripTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_trip",
		Description: "Permanently delete a recorded trip.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Trip id",
				},
			},
			"required": []string{"id"},
		},
	}, s.handleDeleteTrip)
}

func (s *Server) handleDeleteTrip(ctx context.Context, req *mcp.CallToolRequest, input TripInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if _, err := s.store.Trips.Get(ctx, input.ID); err != nil {
		if storage.IsNotFound(err) {
			return nil, DeleteOutput{}, fmt.Errorf("trip %d not found", input.ID)
		}
		return nil, DeleteOutput{}, fmt.Errorf("failed to get trip: %w", err)
	}
	if err := s.store.Trips.Delete(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete trip: %w", err)
	}
	output := DeleteOutput{Deleted: true, ID: input.ID}
	return textResult(output), output, nil
}

// StatsInput is empty; get_stats takes no arguments.
type StatsInput struct{}

// StatsOutput aggregates all trips.
type StatsOutput struct {
	Trips         int     `json:"trips"`
	TotalKm       float64 `json:"total_km"`
	TotalGain     int     `json:"total_elevation_gain"`
	TotalDuration int64   `json:"total_duration_ms"`
	Points        int     `json:"points_of_interest"`
}

func (s *Server) registerGetStatsTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_stats",
		Description: "Totals across all recorded trips: count, distance, climb and time.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}, s.handleGetStats)
}

func (s *Server) handleGetStats(ctx context.Context, req *mcp.CallToolRequest, _ StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	trips, err := s.store.Trips.GetAll(ctx)
	if err != nil {
		return nil, StatsOutput{}, fmt.Errorf("failed to list trips: %w", err)
	}
	points, err := s.store.Points.GetAll(ctx)
	if err != nil {
		return nil, StatsOutput{}, fmt.Errorf("failed to list points: %w", err)
	}
	output := StatsOutput{
		Trips:         len(trips),
		TotalKm:       lo.SumBy(trips, func(t *models.Trip) float64 { return t.Distance }),
		TotalGain:     lo.SumBy(trips, func(t *models.Trip) int { return t.ElevationGain }),
		TotalDuration: lo.SumBy(trips, func(t *models.Trip) int64 { return t.Duration }),
		Points:        len(points),
	}
	return textResult(output), output, nil
}

// AddPointInput defines input for add_point tool.
type AddPointInput struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Emoji     string  `json:"emoji"`
	Note      string  `json:"note,omitempty"`
}

func (s *Server) registerAddPointTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_point",
		Description: "Save a point of interest marked with an emoji.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"latitude": map[string]interface{}{
					"type":        "number",
					"description": "Latitude coordinate (-90 to 90)",
				},
				"longitude": map[string]interface{}{
					"type":        "number",
					"description": "Longitude coordinate (-180 to 180)",
				},
				"emoji": map[string]interface{}{
					"type":        "string",
					"description": "Marker emoji (e.g., '🍄', '⛺')",
				},
				"note": map[string]interface{}{
					"type":        "string",
					"description": "Optional note",
				},
			},
			"required": []string{"latitude", "longitude", "emoji"},
		},
	}, s.handleAddPoint)
}

func (s *Server) handleAddPoint(ctx context.Context, req *mcp.CallToolRequest, input AddPointInput) (*mcp.CallToolResult, models.Point, error) {
	p := models.NewPoint(input.Latitude, input.Longitude, input.Emoji, input.Note)
	if err := p.Validate(); err != nil {
		return nil, models.Point{}, err
	}
	if _, err := s.store.Points.Insert(ctx, p); err != nil {
		return nil, models.Point{}, fmt.Errorf("failed to save point: %w", err)
	}
	return textResult(p), *p, nil
}

// ListPointsInput is empty; list_points takes no arguments.
type ListPointsInput struct{}

// ListPointsOutput defines output for list_points tool.
type ListPointsOutput struct {
	Points []*models.Point `json:"points"`
	Count  int             `json:"count"`
}

func (s *Server) registerListPointsTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_points",
		Description: "List saved points of interest.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}, s.handleListPoints)
}

func (s *Server) handleListPoints(ctx context.Context, req *mcp.CallToolRequest, _ ListPointsInput) (*mcp.CallToolResult, ListPointsOutput, error) {
	points, err := s.store.Points.GetAll(ctx)
	if err != nil {
		return nil, ListPointsOutput{}, fmt.Errorf("failed to list points: %w", err)
	}
	output := ListPointsOutput{Points: points, Count: len(points)}
	return textResult(output), output, nil
}
