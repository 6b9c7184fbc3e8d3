package errors

import "fmt"

func ValidationFailedErr(err error) error {
	return E(Invalid, "validation failed", err)
}

func EmptyParamErr(field string) error {
	ve := ValidationErrs()
	ve.Add(field, "cannot be empty")
	return E(Invalid, "validation failed", ve.Err())
}

// SourceUnavailableErr marks a message source that could not be read.
func SourceUnavailableErr(err error) error {
	return E(Unavailable, "message source unavailable", err)
}

// DuplicateErr returns a conflict error for an entity whose natural key is taken
func DuplicateErr(entity, key string) error {
	return E(Conflict, fmt.Sprintf("duplicate %s %s", entity, key), nil)
}

// StoreFailedErr wraps a storage failure for the named operation.
func StoreFailedErr(op string, err error) error {
	return E(Internal, fmt.Sprintf("store %s failed", op), err)
}

func NotFoundErr(entity, id string) error {
	return E(NotFound, fmt.Sprintf("%s %s not found", entity, id), nil)
}
