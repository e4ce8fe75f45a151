// Package unity implements catalog.Client against the Unity Catalog REST API 2.1.
//
// Existence checks are GET requests on the resource (404 means absent). Creates are POST
// requests on the collection; a 409 response or a RESOURCE_ALREADY_EXISTS error code is
// reported as catalog.ErrResourceConflict.
package unity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
	"github.com/stacklok/lakehouse-bootstrap/internal/httpclient"
)

// APIPrefix is the path prefix of the Unity Catalog REST API
const APIPrefix = "/api/2.1/unity-catalog"

const (
	errorCodeAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	errorCodeNotFound      = "RESOURCE_DOES_NOT_EXIST"
	volumeTypeExternal     = "EXTERNAL"
)

// Client talks to a Unity Catalog server
type Client struct {
	baseURL string
	http    httpclient.Client
}

// Option configures a Client
type Option func(*options)

type options struct {
	token   string
	timeout time.Duration
	http    httpclient.Client
}

// WithToken sets the bearer token
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithHTTPClient replaces the HTTP client, mainly for tests
func WithHTTPClient(client httpclient.Client) Option {
	return func(o *options) {
		o.http = client
	}
}

// New creates a Unity Catalog client for the server at host
func New(host string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(host, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid unity catalog host: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid unity catalog host %q: scheme must be http or https", host)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.http == nil {
		o.http = httpclient.NewDefaultClient(o.timeout, httpclient.WithBearerToken(o.token))
	}

	return &Client{
		baseURL: u.String() + APIPrefix,
		http:    o.http,
	}, nil
}

// collection returns the REST collection for a resource kind
func collection(kind catalog.ResourceKind) (string, error) {
	switch kind {
	case catalog.KindCatalog:
		return "catalogs", nil
	case catalog.KindExternalLocation:
		return "external-locations", nil
	case catalog.KindSchema:
		return "schemas", nil
	case catalog.KindVolume:
		return "volumes", nil
	default:
		return "", fmt.Errorf("%w: %s", catalog.ErrUnsupportedResource, kind)
	}
}

// Exists implements catalog.Client
func (c *Client) Exists(ctx context.Context, kind catalog.ResourceKind, qualifiedName string) (bool, error) {
	if _, err := catalog.SplitQualifiedName(kind, qualifiedName); err != nil {
		return false, err
	}
	coll, err := collection(kind)
	if err != nil {
		return false, err
	}

	_, err = c.http.Get(ctx, c.resourceURL(coll, qualifiedName))
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("failed to get %s '%s': %w", kind, qualifiedName, err)
	}
}

// Create implements catalog.Client
func (c *Client) Create(ctx context.Context, res catalog.Resource) error {
	coll, err := collection(res.Kind())
	if err != nil {
		return err
	}
	payload, err := createRequest(res)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", res.Kind(), err)
	}

	_, err = c.http.Post(ctx, c.baseURL+"/"+coll, body)
	switch {
	case err == nil:
		return nil
	case isAlreadyExists(err):
		return catalog.NewConflictError(res.Kind(), res.QualifiedName())
	default:
		return fmt.Errorf("failed to create %s '%s': %w", res.Kind(), res.QualifiedName(), err)
	}
}

// GetCredential implements catalog.Client
func (c *Client) GetCredential(ctx context.Context, name string) (catalog.CredentialHandle, error) {
	data, err := c.http.Get(ctx, c.resourceURL("storage-credentials", name))
	if err != nil {
		if isNotFound(err) {
			return catalog.CredentialHandle{}, catalog.NewCredentialNotFoundError(name)
		}
		return catalog.CredentialHandle{}, fmt.Errorf("failed to get storage credential '%s': %w", name, err)
	}

	var info StorageCredentialInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return catalog.CredentialHandle{}, fmt.Errorf("failed to decode storage credential '%s': %w", name, err)
	}
	return catalog.CredentialHandle{Name: info.Name, ID: info.ID}, nil
}

func (c *Client) resourceURL(coll, name string) string {
	return c.baseURL + "/" + coll + "/" + url.PathEscape(name)
}

func createRequest(res catalog.Resource) (any, error) {
	switch r := res.(type) {
	case catalog.CatalogSpec:
		return CreateCatalog{Name: r.Name}, nil
	case catalog.ExternalLocationSpec:
		return CreateExternalLocation{
			Name:           r.Name,
			URL:            r.Path,
			CredentialName: r.Credential.Name,
		}, nil
	case catalog.SchemaSpec:
		req := CreateSchema{Name: r.Name, CatalogName: r.Catalog, Comment: r.Comment}
		if r.Type == catalog.SchemaKindExternal {
			if r.StorageRoot == "" {
				return nil, fmt.Errorf("external schema '%s' has no storage root", r.QualifiedName())
			}
			req.StorageRoot = r.StorageRoot
		}
		return req, nil
	case catalog.VolumeSpec:
		if r.StorageLocation == "" {
			return nil, fmt.Errorf("external volume '%s' has no storage location", r.QualifiedName())
		}
		return CreateVolume{
			Name:            r.Name,
			CatalogName:     r.Catalog,
			SchemaName:      r.Schema,
			VolumeType:      volumeTypeExternal,
			StorageLocation: r.StorageLocation,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", catalog.ErrUnsupportedResource, res)
	}
}

func isNotFound(err error) bool {
	return httpclient.StatusCode(err) == http.StatusNotFound || apiErrorCode(err) == errorCodeNotFound
}

func isAlreadyExists(err error) bool {
	return httpclient.StatusCode(err) == http.StatusConflict || apiErrorCode(err) == errorCodeAlreadyExists
}

// apiErrorCode extracts error_code from an API error response body
func apiErrorCode(err error) string {
	var httpErr *httpclient.HTTPError
	if !errors.As(err, &httpErr) || len(httpErr.Body) == 0 {
		return ""
	}
	var apiErr ErrorResponse
	if json.Unmarshal(httpErr.Body, &apiErr) != nil {
		return ""
	}
	return apiErr.ErrorCode
}
