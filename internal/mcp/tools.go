package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Longevitate/carefinder/internal/application/services"
	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/infrastructure/observability"
	apperrors "github.com/Longevitate/carefinder/pkg/errors"
)

const serviceCatalogURI = "carefinder://services/catalog"

// Searcher runs facility and provider searches.
type Searcher interface {
	TriageAndRank(ctx context.Context, req entities.SearchRequest) (*entities.RankedResult, error)
	RankProviders(ctx context.Context, req entities.ProviderSearchRequest) (*entities.RankedProviderResult, error)
}

// ToolDeps contains dependencies for the care search tools.
type ToolDeps struct {
	Searcher  Searcher
	Assembler *services.ResultAssembler
	Snapshots services.SnapshotReader
}

// RegisterCareTools registers the care-locations and find-provider tools and
// the service catalog resource.
func RegisterCareTools(s *server.MCPServer, deps *ToolDeps) {
	registerCareLocationsTool(s, deps)
	registerFindProviderTool(s, deps)
	registerServiceCatalogResource(s, deps)
}

func registerCareLocationsTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"care-locations",
		mcp.WithDescription(
			"Find walk-in and urgent care locations for a reason for visit. "+
				"Emergencies are detected first and answered with 911 or 988 guidance. "+
				"Results are sorted by distance when a location is given, otherwise by rating.",
		),
		mcp.WithString("reason", mcp.Description("Reason for the visit in the patient's words, e.g. 'sore throat and fever'")),
		mcp.WithString("location", mcp.Description("ZIP code, city name or address to search near")),
		mcp.WithArray("services",
			mcp.Description("Services the location must offer, e.g. ['X-ray']"),
			mcp.WithStringItems(),
		),
		mcp.WithBoolean("open_now_only", mcp.Description("Only return locations open right now")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of locations (default 7, max 20)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		search := entities.SearchRequest{
			Reason:   req.GetString("reason", ""),
			Location: req.GetString("location", ""),
			Limit:    req.GetInt("limit", 0),
			Filters: entities.FacilityFilters{
				RequiredServices: req.GetStringSlice("services", nil),
				OpenNowOnly:      req.GetBool("open_now_only", false),
			},
		}

		result, err := deps.Searcher.TriageAndRank(ctx, search)
		if err != nil {
			return toolError(ctx, "care-locations", err)
		}
		return mcp.NewToolResultStructured(deps.Assembler.Facilities(result), deps.Assembler.FacilitiesText(result)), nil
	})
}

func registerFindProviderTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"find-provider",
		mcp.WithDescription(
			"Find individual clinicians by specialty or name, optionally near a location. "+
				"Filters narrow by new-patient availability, virtual care, language, insurance, gender and age group.",
		),
		mcp.WithString("search", mcp.Description("Specialty, condition or provider name, e.g. 'family medicine'")),
		mcp.WithString("location", mcp.Description("ZIP code, city name or address to search near")),
		mcp.WithBoolean("accepting_new_patients", mcp.Description("Only providers accepting new patients")),
		mcp.WithBoolean("virtual_care", mcp.Description("Only providers offering virtual visits")),
		mcp.WithArray("languages",
			mcp.Description("Languages the provider should speak; any one is enough"),
			mcp.WithStringItems(),
		),
		mcp.WithString("insurance", mcp.Description("Insurance plan name or part of it")),
		mcp.WithString("gender", mcp.Description("Provider gender"), mcp.Enum("Male", "Female")),
		mcp.WithString("age_group", mcp.Description("Patient age group"), mcp.Enum(entities.KnownAgeGroups...)),
		mcp.WithNumber("limit", mcp.Description("Maximum number of providers (default 5, max 20)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		search := entities.ProviderSearchRequest{
			Search:   req.GetString("search", ""),
			Location: req.GetString("location", ""),
			Limit:    req.GetInt("limit", 0),
			Filters: entities.ProviderFilters{
				AcceptingNewPatients: optionalBool(req, "accepting_new_patients"),
				VirtualCare:          optionalBool(req, "virtual_care"),
				Languages:            req.GetStringSlice("languages", nil),
				Insurance:            req.GetString("insurance", ""),
				Gender:               req.GetString("gender", ""),
				AgeGroup:             req.GetString("age_group", ""),
			},
		}

		result, err := deps.Searcher.RankProviders(ctx, search)
		if err != nil {
			return toolError(ctx, "find-provider", err)
		}
		return mcp.NewToolResultStructured(deps.Assembler.Providers(result), deps.Assembler.ProvidersText(result)), nil
	})
}

func registerServiceCatalogResource(s *server.MCPServer, deps *ToolDeps) {
	resource := mcp.NewResource(
		serviceCatalogURI,
		"Service catalog",
		mcp.WithResourceDescription("Distinct services offered across all care locations"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snapshot := deps.Snapshots.Current()
		if snapshot == nil {
			return nil, fmt.Errorf("service catalog is not loaded yet")
		}
		catalog := snapshot.ServiceCatalog
		if catalog == nil {
			catalog = []string{}
		}
		body, err := json.Marshal(map[string]any{"services": catalog, "version": snapshot.Version})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: serviceCatalogURI, MIMEType: "application/json", Text: string(body)},
		}, nil
	})
}

// optionalBool distinguishes an absent argument from an explicit false.
func optionalBool(req mcp.CallToolRequest, key string) *bool {
	if _, ok := req.GetArguments()[key]; !ok {
		return nil
	}
	v := req.GetBool(key, false)
	return &v
}

// toolError reports corpus problems as tool errors the model can read; other
// failures become JSON-RPC errors.
func toolError(ctx context.Context, tool string, err error) (*mcp.CallToolResult, error) {
	observability.LoggerFromContext(ctx).Error().Err(err).Str("tool", tool).Msg("MCP tool failed")
	if apperrors.IsFatal(err) {
		return mcp.NewToolResultError("Care location data is not available right now. Please try again later."), nil
	}
	return nil, err
}
