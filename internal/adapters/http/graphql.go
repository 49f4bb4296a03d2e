package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Position",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	segmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Segment",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"start":    &graphql.Field{Type: positionType},
			"end":      &graphql.Field{Type: positionType},
			"explored": &graphql.Field{Type: graphql.Boolean},
		},
	})

	streetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Street",
		Fields: graphql.Fields{
			"way_id":   &graphql.Field{Type: graphql.Int},
			"name":     &graphql.Field{Type: graphql.String},
			"highway":  &graphql.Field{Type: graphql.String},
			"segments": &graphql.Field{Type: graphql.NewList(segmentType)},
		},
	})

	discoveredType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DiscoveredSegment",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"start":       &graphql.Field{Type: positionType},
			"end":         &graphql.Field{Type: positionType},
			"street_name": &graphql.Field{Type: graphql.String},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ExplorationStats",
		Fields: graphql.Fields{
			"segments_explored": &graphql.Field{Type: graphql.Int},
			"total_xp":          &graphql.Field{Type: graphql.Int},
			"session_xp":        &graphql.Field{Type: graphql.Int},
			"current_level":     &graphql.Field{Type: graphql.Int},
			"exploration_days":  &graphql.Field{Type: graphql.Int},
			"consecutive_days":  &graphql.Field{Type: graphql.Int},
			"total_distance_km": &graphql.Field{Type: graphql.Float},
		},
	})

	waypointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Waypoint",
		Fields: graphql.Fields{
			"position":    &graphql.Field{Type: positionType},
			"instruction": &graphql.Field{Type: graphql.String},
			"kind":        &graphql.Field{Type: graphql.String},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteSuggestion",
		Fields: graphql.Fields{
			"waypoints":         &graphql.Field{Type: graphql.NewList(waypointType)},
			"total_distance_km": &graphql.Field{Type: graphql.Float},
			"segment_count":     &graphql.Field{Type: graphql.Int},
			"estimated_xp":      &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"explorationStats": &graphql.Field{
				Type:        statsType,
				Description: "Ledger and XP statistics",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Tracker.Stats(), nil
				},
			},
			"discoveredSegments": &graphql.Field{
				Type:        graphql.NewList(discoveredType),
				Description: "Geometry of every discovered segment",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Ledger.DiscoveredSegments(), nil
				},
			},
			"nearbyStreets": &graphql.Field{
				Type:        graphql.NewList(streetType),
				Description: "Street graph around a position",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 200.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					return deps.Streets.EnsureLoaded(p.Context, domain.Position{Lat: lat, Lon: lon}, radius), nil
				},
			},
			"suggestRoute": &graphql.Field{
				Type:        routeType,
				Description: "Build a walking route over undiscovered streets",
				Args: graphql.FieldConfigArgument{
					"lat":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius_km": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 2.0},
					"target_km": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 2.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radiusKm := p.Args["radius_km"].(float64)
					targetKm := p.Args["target_km"].(float64)
					return deps.Suggestions.Suggest(p.Context, domain.Position{Lat: lat, Lon: lon}, radiusKm, targetKm)
				},
			},
			"achievements": &graphql.Field{
				Type: graphql.NewList(graphql.NewObject(graphql.ObjectConfig{
					Name: "AchievementProgress",
					Fields: graphql.Fields{
						"unlocked": &graphql.Field{Type: graphql.Boolean},
						"current":  &graphql.Field{Type: graphql.Int},
						"progress": &graphql.Field{Type: graphql.Float},
						"achievement": &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{
							Name: "Achievement",
							Fields: graphql.Fields{
								"id":          &graphql.Field{Type: graphql.String},
								"name":        &graphql.Field{Type: graphql.String},
								"description": &graphql.Field{Type: graphql.String},
								"category":    &graphql.Field{Type: graphql.String},
								"xp_reward":   &graphql.Field{Type: graphql.Int},
							},
						})},
					},
				})),
				Description: "Achievement catalogue with unlock state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Achievements.Progress(deps.Tracker.Stats()), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
