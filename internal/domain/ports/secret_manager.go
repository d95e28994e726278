package ports

import "context"

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value   string
	Version string
}

// SecretManager defines the port for retrieving credentials from a secret
// management service. Implementations handle authentication with the backend
// and cache secrets appropriately.
type SecretManager interface {
	// GetSecret retrieves a secret by its path/name.
	// Path format depends on implementation:
	//   - AWS: "iugu-gateway/{env}/api-key" or a full ARN
	//   - local: a file path relative to the configured base directory
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
