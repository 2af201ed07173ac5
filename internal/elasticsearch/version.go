package elasticsearch

import (
	"errors"
	"fmt"
	"net/http"

	"k8s.io/apimachinery/pkg/util/version"
)

// ErrVersionDetection is returned when the cluster version cannot be determined
var ErrVersionDetection = errors.New("failed to query Elasticsearch for version details")

// putCreatesIndexSince is the first release that creates indexes with PUT
var putCreatesIndexSince = version.MustParseGeneric("5.0.0")

// ClusterVersion is the version reported by a cluster, detected once per
// operation and passed to the calls whose syntax depends on it.
type ClusterVersion struct {
	Number string
	parsed *version.Version
}

// ParseClusterVersion parses a version number such as "6.2.0" or
// "8.0.0-SNAPSHOT".
func ParseClusterVersion(number string) (ClusterVersion, error) {
	v, err := version.ParseGeneric(number)
	if err != nil {
		return ClusterVersion{}, fmt.Errorf("invalid version number %q: %w", number, err)
	}
	return ClusterVersion{Number: number, parsed: v}, nil
}

func (v ClusterVersion) String() string {
	return v.Number
}

// CreateIndexMethod returns the HTTP method used to create an index:
// PUT from 5.0.0 on, POST before. An undetected version is treated as current.
func (v ClusterVersion) CreateIndexMethod() string {
	if v.parsed == nil || v.parsed.AtLeast(putCreatesIndexSince) {
		return http.MethodPut
	}
	return http.MethodPost
}

// DetectVersion queries the cluster root and parses the reported version
func (c *Client) DetectVersion() (ClusterVersion, error) {
	info, err := c.Info()
	if err != nil {
		return ClusterVersion{}, fmt.Errorf("%w: %v", ErrVersionDetection, err)
	}

	if info.Version.Number == "" {
		return ClusterVersion{}, fmt.Errorf("%w: response has no version number", ErrVersionDetection)
	}

	v, err := ParseClusterVersion(info.Version.Number)
	if err != nil {
		return ClusterVersion{}, fmt.Errorf("%w: %v", ErrVersionDetection, err)
	}

	return v, nil
}
