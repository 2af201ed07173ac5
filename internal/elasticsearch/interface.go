package elasticsearch

// Interface defines the contract for Elasticsearch client operations
// This interface allows for easy mocking in tests
type Interface interface {
	// Cluster operations
	Info() (*ClusterInfo, error)
	DetectVersion() (ClusterVersion, error)
	DeleteAll() error

	// Index operations
	DeleteIndex(index string) error
	CreateIndex(index string, body []byte, clusterVersion ClusterVersion) error

	// Ingest pipeline operations
	DeletePipeline(name string) error
	PutPipeline(name string, body []byte) error
}

// Ensure *Client implements Interface
var _ Interface = (*Client)(nil)
