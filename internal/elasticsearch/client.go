// Package elasticsearch provides a client for the cluster maintenance calls
// esconfig makes: version detection, index and ingest pipeline recreation,
// and wiping the cluster.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ErrTransport is returned when a request never produced an HTTP response
var ErrTransport = errors.New("transport failure")

// Client represents an Elasticsearch client. Requests are built with esapi
// and sent over the bare transport, which unlike elasticsearch.Client does
// not refuse clusters older than 7.14.
type Client struct {
	transport esapi.Transport
}

// ResponseError is the error envelope returned by the cluster. Type and
// Reason are empty when the body could not be parsed; StatusCode is then
// the only information available.
type ResponseError struct {
	StatusCode int
	Type       string
	Reason     string
}

func (e *ResponseError) Error() string {
	switch {
	case e.Type != "":
		return e.Type + ": " + e.Reason
	case e.Reason != "":
		return e.Reason
	default:
		return fmt.Sprintf("elasticsearch returned status %d", e.StatusCode)
	}
}

// ClusterInfo is the subset of the root endpoint response used by esconfig
type ClusterInfo struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

// NewClient creates a new Elasticsearch client. Credentials may be embedded
// in baseURL; a path prefix in baseURL is kept for every request.
func NewClient(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Elasticsearch URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid Elasticsearch URL %q", baseURL)
	}

	tp, err := elastictransport.New(elastictransport.Config{
		URLs:         []*url.URL{u},
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &Client{
		transport: tp,
	}, nil
}

// Info retrieves the cluster root document
func (c *Client) Info() (*ClusterInfo, error) {
	body, err := c.do(esapi.InfoRequest{})
	if err != nil {
		return nil, err
	}

	var info ClusterInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &info, nil
}

// DeleteAll deletes every index in the cluster
func (c *Client) DeleteAll() error {
	_, err := c.do(esapi.IndicesDeleteRequest{
		Index: []string{"_all"},
	})
	return err
}

// DeleteIndex deletes a specific index
func (c *Client) DeleteIndex(index string) error {
	_, err := c.do(esapi.IndicesDeleteRequest{
		Index: []string{index},
	})
	return err
}

// CreateIndex creates an index with the given settings/mappings body, using
// the HTTP method the detected cluster version expects.
func (c *Client) CreateIndex(index string, body []byte, clusterVersion ClusterVersion) error {
	if clusterVersion.CreateIndexMethod() == http.MethodPut {
		_, err := c.do(esapi.IndicesCreateRequest{
			Index: index,
			Body:  bytes.NewReader(body),
		})
		return err
	}

	_, err := c.do(legacyCreateIndexRequest{index: index, body: body})
	return err
}

// DeletePipeline deletes an ingest pipeline
func (c *Client) DeletePipeline(name string) error {
	_, err := c.do(esapi.IngestDeletePipelineRequest{
		PipelineID: name,
	})
	return err
}

// PutPipeline creates or replaces an ingest pipeline
func (c *Client) PutPipeline(name string, body []byte) error {
	_, err := c.do(esapi.IngestPutPipelineRequest{
		PipelineID: name,
		Body:       bytes.NewReader(body),
	})
	return err
}

// do performs the request and classifies the outcome: transport failures,
// error envelopes and unparseable error responses become errors, anything
// else is returned as the raw response body.
func (c *Client) do(req esapi.Request) ([]byte, error) {
	res, err := req.Do(context.Background(), c.transport)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		if res.IsError() {
			return body, &ResponseError{StatusCode: res.StatusCode}
		}
		return body, nil
	}

	if respErr := parseErrorField(envelope.Error); respErr != nil {
		respErr.StatusCode = res.StatusCode
		return body, respErr
	}

	return body, nil
}

// parseErrorField decodes the "error" member of a response. Elasticsearch
// 2.x and later send an object with type and reason; 1.x sends a string.
func parseErrorField(raw json.RawMessage) *ResponseError {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", `""`:
		return nil
	}

	var reason string
	if err := json.Unmarshal(raw, &reason); err == nil {
		return &ResponseError{Reason: reason}
	}

	var obj struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && (obj.Type != "" || obj.Reason != "") {
		return &ResponseError{Type: obj.Type, Reason: obj.Reason}
	}

	return &ResponseError{Reason: string(raw)}
}

// legacyCreateIndexRequest creates an index with POST, as clusters before
// 5.0 require. esapi only offers the PUT form.
type legacyCreateIndexRequest struct {
	index string
	body  []byte
}

func (r legacyCreateIndexRequest) Do(ctx context.Context, transport esapi.Transport) (*esapi.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/"+r.index, bytes.NewReader(r.body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := transport.Perform(req)
	if err != nil {
		return nil, err
	}

	return &esapi.Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       res.Body,
	}, nil
}

// IsNotFound reports whether err is the cluster saying the resource does not exist
func IsNotFound(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
