package alexa

import "fmt"

// Endpoints builds the remote directory URLs from the configured host.
// DeleteSkill is the URL-encoded skill prefix the delete endpoint expects
// in front of the entity delete id.
type Endpoints struct {
	Host        string
	DeleteSkill string
}

// Entities is the skill entity listing endpoint.
func (e Endpoints) Entities() string {
	return fmt.Sprintf("https://%s/api/behaviors/entities?skillId=amzn1.ask.1p.smarthome", e.Host)
}

// GraphQL is the bulk endpoint listing endpoint.
func (e Endpoints) GraphQL() string {
	return fmt.Sprintf("https://%s/nexus/v1/graphql", e.Host)
}

// Groups is the group collection endpoint: GET to list, POST to create.
func (e Endpoints) Groups() string {
	return fmt.Sprintf("https://%s/api/phoenix/group", e.Host)
}

// Group is the single-group endpoint: PUT to update, DELETE to remove.
func (e Endpoints) Group(id string) string {
	return fmt.Sprintf("%s/%s", e.Groups(), id)
}

// DeleteEntity addresses one entity for deletion by its escaped delete id,
// prefixed with the skill marker.
func (e Endpoints) DeleteEntity(deleteID string) string {
	return fmt.Sprintf("https://%s/api/phoenix/appliance/%s%%3D%%3D_%s", e.Host, e.DeleteSkill, deleteID)
}

// EntityCheck is the existence-check endpoint used to confirm deletions:
// a 404 here means the entity is gone.
func (e Endpoints) EntityCheck(id string) string {
	return fmt.Sprintf("https://%s/api/smarthome/v1/presentation/devices/control/%s", e.Host, id)
}
