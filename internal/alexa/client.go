// Package alexa talks to the voice-assistant smart-home directory:
// listing entities, endpoints and groups, and applying mutations through
// the retrying Executor.
package alexa

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/mkieser/alexactl/internal/sync"
	"github.com/mkieser/alexactl/internal/transport"
)

// listTimeout bounds directory listing calls; mutations use the tighter
// mutateTimeout in the Executor.
const listTimeout = 15 * time.Second

// endpointsQuery is the fixed bulk listing query. Pagination is disabled
// because membership reconciliation needs the whole directory in one pass.
const endpointsQuery = `
	query CustomerSmartHome {
		endpoints(endpointsQueryParams: { paginationParams: { disablePagination: true } }) {
			items {
				friendlyName
				legacyAppliance {
					applianceId
					mergedApplianceIds
					connectedVia
					applianceKey
					appliancePairs
					modelName
					friendlyDescription
					version
					friendlyName
					manufacturerName
				}
			}
		}
	}
`

// Client fetches the remote directory. Malformed responses degrade to
// empty collections rather than failing the run: the remote API is known
// to hand back unparseable bodies under load, and downstream logic treats
// "no data" as "nothing to do". These cases are logged at error level
// because they can mask real data loss.
type Client struct {
	sender    transport.Sender
	endpoints Endpoints
	headers   map[string]string
	log       *slog.Logger
}

// NewClient creates a directory client sending through s with the given
// authentication headers.
func NewClient(s transport.Sender, endpoints Endpoints, headers map[string]string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{sender: s, endpoints: endpoints, headers: headers, log: log}
}

type entityPayload struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// Entities lists the skill entities. Entries with missing identity fields
// are skipped with a warning.
func (c *Client) Entities(ctx context.Context) ([]Entity, error) {
	resp, err := c.get(ctx, c.endpoints.Entities())
	if err != nil {
		return nil, err
	}

	var payload []entityPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		c.log.Error("unparseable entity listing, treating as empty",
			"error", err, "body_prefix", bodyPrefix(resp.Body))
		return []Entity{}, nil
	}

	entities := make([]Entity, 0, len(payload))
	for _, p := range payload {
		if p.ID == "" {
			c.log.Warn("skipping entity with no id", "display_name", p.DisplayName)
			continue
		}
		entities = append(entities, NewEntity(p.ID, p.DisplayName, p.Description, ""))
	}
	return entities, nil
}

type graphqlPayload struct {
	Data struct {
		Endpoints struct {
			Items []struct {
				FriendlyName    string `json:"friendlyName"`
				LegacyAppliance struct {
					ApplianceID         string `json:"applianceId"`
					ApplianceKey        string `json:"applianceKey"`
					FriendlyDescription string `json:"friendlyDescription"`
					ManufacturerName    string `json:"manufacturerName"`
				} `json:"legacyAppliance"`
			} `json:"items"`
		} `json:"endpoints"`
	} `json:"data"`
}

// EndpointEntities lists the bulk endpoint directory, which is the only
// listing that carries appliance identifiers.
func (c *Client) EndpointEntities(ctx context.Context) ([]Entity, error) {
	body, err := json.Marshal(map[string]string{"query": endpointsQuery})
	if err != nil {
		return nil, err
	}
	resp, err := c.sender.Send(ctx, transport.Request{
		Method:  "POST",
		URL:     c.endpoints.GraphQL(),
		Headers: c.headers,
		Body:    body,
		Timeout: listTimeout,
	})
	if err != nil {
		return nil, sync.NewOpError(sync.CodeTransient, "list endpoints", "", err)
	}

	var payload graphqlPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		c.log.Error("unparseable endpoint listing, treating as empty",
			"error", err, "body_prefix", bodyPrefix(resp.Body))
		return []Entity{}, nil
	}

	items := payload.Data.Endpoints.Items
	entities := make([]Entity, 0, len(items))
	for _, item := range items {
		la := item.LegacyAppliance
		if la.ApplianceKey == "" && la.ApplianceID == "" {
			c.log.Warn("skipping endpoint with no appliance identity", "friendly_name", item.FriendlyName)
			continue
		}
		entities = append(entities, NewEntity(la.ApplianceKey, item.FriendlyName, la.FriendlyDescription, la.ApplianceID))
	}
	return entities, nil
}

type groupsPayload struct {
	ApplianceGroups []struct {
		Name                    string           `json:"name"`
		GroupID                 string           `json:"groupId"`
		EntityID                string           `json:"entityId"`
		EntityType              string           `json:"entityType"`
		GroupType               string           `json:"groupType"`
		ChildIDs                []string         `json:"childIds"`
		Defaults                []map[string]any `json:"defaults"`
		AssociatedUnitIDs       []string         `json:"associatedUnitIds"`
		DefaultMetadataByType   map[string]any   `json:"defaultMetadataByType"`
		ImplicitTargetingByType map[string]any   `json:"implicitTargetingByType"`
		ApplianceIDs            []string         `json:"applianceIds"`
	} `json:"applianceGroups"`
}

// Groups lists the appliance groups with their full round-trip payloads.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	resp, err := c.get(ctx, c.endpoints.Groups())
	if err != nil {
		return nil, err
	}

	var payload groupsPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		c.log.Error("unparseable group listing, treating as empty",
			"error", err, "body_prefix", bodyPrefix(resp.Body))
		return []Group{}, nil
	}

	groups := make([]Group, 0, len(payload.ApplianceGroups))
	for _, g := range payload.ApplianceGroups {
		group := Group{
			EntityID:                g.EntityID,
			ID:                      g.GroupID,
			Name:                    g.Name,
			EntityType:              orDefault(g.EntityType, "GROUP"),
			GroupType:               orDefault(g.GroupType, "APPLIANCE"),
			ChildIDs:                emptyIfNil(g.ChildIDs),
			Defaults:                g.Defaults,
			AssociatedUnitIDs:       emptyIfNil(g.AssociatedUnitIDs),
			DefaultMetadataByType:   g.DefaultMetadataByType,
			ImplicitTargetingByType: g.ImplicitTargetingByType,
			ApplianceIDs:            emptyIfNil(g.ApplianceIDs),
		}
		if group.Defaults == nil {
			group.Defaults = []map[string]any{}
		}
		if group.DefaultMetadataByType == nil {
			group.DefaultMetadataByType = map[string]any{}
		}
		if group.ImplicitTargetingByType == nil {
			group.ImplicitTargetingByType = map[string]any{}
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// FilterByDescription keeps only entities whose description contains the
// filter text. An empty filter keeps everything; the caller decides
// whether filtering applies to the current action.
func FilterByDescription(entities []Entity, filter string) []Entity {
	if filter == "" {
		return entities
	}
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if strings.Contains(e.Description, filter) {
			out = append(out, e)
		}
	}
	return out
}

func (c *Client) get(ctx context.Context, url string) (transport.Response, error) {
	resp, err := c.sender.Send(ctx, transport.Request{
		Method:  "GET",
		URL:     url,
		Headers: c.headers,
		Timeout: listTimeout,
	})
	if err != nil {
		return transport.Response{}, sync.NewOpError(sync.CodeTransient, "list directory", url, err)
	}
	return resp, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func bodyPrefix(body []byte) string {
	const n = 100
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n])
}
