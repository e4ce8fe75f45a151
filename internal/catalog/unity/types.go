package unity

// ErrorResponse is the error payload returned by the API
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message,omitempty"`
}

// CreateCatalog is the body of POST /catalogs
type CreateCatalog struct {
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
}

// CreateExternalLocation is the body of POST /external-locations
type CreateExternalLocation struct {
	Name           string `json:"name"`
	URL            string `json:"url"`
	CredentialName string `json:"credential_name"`
	Comment        string `json:"comment,omitempty"`
}

// CreateSchema is the body of POST /schemas
type CreateSchema struct {
	Name        string `json:"name"`
	CatalogName string `json:"catalog_name"`
	Comment     string `json:"comment,omitempty"`
	StorageRoot string `json:"storage_root,omitempty"`
}

// CreateVolume is the body of POST /volumes
type CreateVolume struct {
	Name            string `json:"name"`
	CatalogName     string `json:"catalog_name"`
	SchemaName      string `json:"schema_name"`
	VolumeType      string `json:"volume_type"`
	StorageLocation string `json:"storage_location"`
	Comment         string `json:"comment,omitempty"`
}

// StorageCredentialInfo is the subset of GET /storage-credentials/{name} used here
type StorageCredentialInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
