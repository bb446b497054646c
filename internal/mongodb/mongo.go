package mongodb

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrRecordNotFound   = errors.New("record not found in the database")
	ErrDuplicateKey     = errors.New("record already exists in the database")
	ErrStoreUnavailable = errors.New("database is unavailable")
)

// storeError converts driver errors into the package sentinels so no
// driver-specific error type leaks past the store boundary.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrRecordNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

// distinctStrings flattens the result of a Distinct call, skipping empty and
// non-string values.
func distinctStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
