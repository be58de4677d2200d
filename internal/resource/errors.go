package resource

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// Keys that classify a rejected request.
const (
	KeyIDExists   = "idexists"
	KeyIDNull     = "idnull"
	KeyIDInvalid  = "idinvalid"
	KeyIDNotFound = "idnotfound"
)

// RequestError is a request rejected before or instead of a write. Err is
// one of the identifier sentinels in pkg/types or types.ErrNotFound.
type RequestError struct {
	Entity string
	Key    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v (%s)", e.Entity, e.Err, e.Key)
}

func (e *RequestError) Unwrap() error { return e.Err }

func reject(entity, key string, err error) error {
	return &RequestError{Entity: entity, Key: key, Err: err}
}

// notFound converts a table's ErrNotFound into a RequestError and passes
// other errors through.
func notFound(entity string, err error) error {
	if errors.Is(err, types.ErrNotFound) {
		return reject(entity, KeyIDNotFound, types.ErrNotFound)
	}
	return err
}

// checkID rejects a body ID that is missing or differs from the addressed ID.
func checkID(entity, addressed, body string) error {
	if body == "" {
		return reject(entity, KeyIDNull, types.ErrIdentifierMissing)
	}
	if addressed != body {
		return reject(entity, KeyIDInvalid, types.ErrIdentifierMismatch)
	}
	return nil
}
