package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/assistant-tools/internal/server"
)

// Resource URIs.
const (
	CalendarAliasesURI = "calendar://aliases"
	CalendarListURI    = "calendar://calendars"
	AddressBookListURI = "contacts://addressbooks"
	jsonMIMEType       = "application/json"
)

// RegisterDAVResources registers the calendar and contacts resources whose
// sessions are configured.
func RegisterDAVResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc.Calendar() != nil {
		aliasesResource := mcp.NewResource(
			CalendarAliasesURI,
			"Calendar Aliases",
			mcp.WithResourceDescription("Short names accepted wherever a calendar name is expected, mapped to calendar display names"),
			mcp.WithMIMEType(jsonMIMEType),
		)
		s.AddResource(aliasesResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return jsonContents(request.Params.URI, sc.Calendar().Aliases())
		})

		listResource := mcp.NewResource(
			CalendarListURI,
			"Calendars",
			mcp.WithResourceDescription("All calendars of the Fastmail account with their aliases"),
			mcp.WithMIMEType(jsonMIMEType),
		)
		s.AddResource(listResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			infos, err := sc.Calendar().ListCalendars(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list calendars: %w", err)
			}
			return jsonContents(request.Params.URI, infos)
		})
	}

	if sc.Contacts() != nil {
		booksResource := mcp.NewResource(
			AddressBookListURI,
			"Address Books",
			mcp.WithResourceDescription("All address books of the Fastmail account"),
			mcp.WithMIMEType(jsonMIMEType),
		)
		s.AddResource(booksResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			books, err := sc.Contacts().AddressBooks(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list address books: %w", err)
			}
			return jsonContents(request.Params.URI, books)
		})
	}

	return nil
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: jsonMIMEType,
			Text:     string(data),
		},
	}, nil
}
