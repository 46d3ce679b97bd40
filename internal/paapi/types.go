// Package paapi signs and executes Product Advertising API item lookups.
package paapi

import (
	"fmt"
	"strings"
)

// Default endpoint values applied when the stored credential set leaves them
// blank.
const (
	DefaultMarketplace = "www.amazon.com"
	DefaultRegion      = "us-east-1"
	DefaultHost        = "webservices.amazon.com"
)

// Credentials is the fully-resolved credential set for the Product
// Advertising API. All fields are plain strings; the credential store owns
// persistence and hands the client a complete set.
type Credentials struct {
	AccessKey   string `json:"access_key"`
	SecretKey   string `json:"secret_key"`
	PartnerTag  string `json:"partner_tag"`
	Marketplace string `json:"marketplace"`
	Region      string `json:"region"`
	Host        string `json:"host"`
}

// WithDefaults returns a copy with blank marketplace/region/host replaced by
// the package defaults. Access key, secret key and partner tag are left as-is;
// validation of those belongs to the signer and client.
func (c Credentials) WithDefaults() Credentials {
	out := c
	if strings.TrimSpace(out.Marketplace) == "" {
		out.Marketplace = DefaultMarketplace
	}
	if strings.TrimSpace(out.Region) == "" {
		out.Region = DefaultRegion
	}
	if strings.TrimSpace(out.Host) == "" {
		out.Host = DefaultHost
	}
	return out
}

// ConfigError reports missing or malformed API configuration. It is raised
// before any network call and never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "paapi config: " + e.Reason }

// RemoteError preserves a non-success response from the remote API for
// diagnostics. It is not retried at this layer.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("paapi: remote returned %d: %s", e.StatusCode, e.Body)
}
