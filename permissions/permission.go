package permissions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Endpoint declares what a route needs. Skip marks it public; Permissions lists the
// capabilities a caller must hold, where an empty list means any authenticated user.
type Endpoint struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

type PermissionData struct {
	Endpoints []Endpoint `json:"endpoints"`
	Skip      bool       `json:"skip"`

	index map[string]Endpoint
}

func endpointKey(method, path string) string {
	return method + " " + path
}

// FindPermissions looks up the declaration for a chi route pattern. Routes that are not
// declared report found=false and must be treated as requiring authentication.
func (r *PermissionData) FindPermissions(path, method string) (endpoint Endpoint, found bool) {
	if r.index == nil {
		r.buildIndex()
	}

	endpoint, found = r.index[endpointKey(method, path)]
	if !found && !strings.HasSuffix(path, "/") {
		// chi reports "/v1/rooms" for a request without the trailing slash of "/v1/rooms/"
		endpoint, found = r.index[endpointKey(method, path+"/")]
	}

	return endpoint, found
}

func (r *PermissionData) buildIndex() {
	r.index = make(map[string]Endpoint, len(r.Endpoints))

	for _, endpoint := range r.Endpoints {
		r.index[endpointKey(endpoint.Method, endpoint.Path)] = endpoint
	}
}

// Load decodes a permissions document.
func Load(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, fmt.Errorf("decoding permissions: %w", err)
	}

	permissions.buildIndex()

	return &permissions, nil
}

// Get returns the permissions embedded in the binary, or nil when they cannot be decoded.
// A nil result makes the RBAC middleware deny every protected route.
func Get() *PermissionData {
	permissions, err := Load(permissionsData)
	if err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return permissions
}
