package model

import "time"

// StoredRecord is a record document as persisted by the records service.
// Doc holds the JSON body without id/version metadata.
type StoredRecord struct {
	Collection string
	ID         string
	Ver        int64
	Doc        []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UpdatedBy  string
}
