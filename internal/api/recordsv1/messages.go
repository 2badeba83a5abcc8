// Package recordsv1 defines the neverland.records.v1.Records gRPC contract.
//
// Messages travel as google.protobuf.Struct and are mapped onto the Go types
// below by the convert package.
package recordsv1

import "encoding/json"

// ListRequest selects a collection.
type ListRequest struct {
	Collection string `json:"collection"`
}

// ListResponse carries every record of a collection, newest first.
type ListResponse struct {
	Records []json.RawMessage `json:"records"`
}

// CreateRequest adds a record; the server assigns id and version.
type CreateRequest struct {
	Collection string          `json:"collection"`
	Record     json.RawMessage `json:"record"`
}

// UpdateRequest replaces a record. BaseVersion 0 skips the version check.
type UpdateRequest struct {
	Collection  string          `json:"collection"`
	ID          string          `json:"id"`
	BaseVersion int64           `json:"baseVersion,omitempty"`
	Record      json.RawMessage `json:"record"`
}

// DeleteRequest removes a record. BaseVersion 0 skips the version check.
type DeleteRequest struct {
	Collection  string `json:"collection"`
	ID          string `json:"id"`
	BaseVersion int64  `json:"baseVersion,omitempty"`
}

// RecordResponse returns the stored record with server-assigned metadata.
type RecordResponse struct {
	Record json.RawMessage `json:"record"`
}
