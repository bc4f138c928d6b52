package incidents

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type LoadErrorKind string

const (
	LoadTransport  LoadErrorKind = "transport"
	LoadPermission LoadErrorKind = "permission"
	LoadUnknown    LoadErrorKind = "unknown"
)

var ErrPermissionDenied = errors.New("permission denied")

// LoadError reports a failed bulk read. A failed read never carries partial data.
type LoadError struct {
	Kind       LoadErrorKind
	Collection string
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s failed (%s): %v", e.Collection, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func newLoadError(collection string, err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	return &LoadError{Kind: classify(err), Collection: collection, Err: err}
}

func classify(err error) LoadErrorKind {
	switch {
	case err == nil:
		return LoadUnknown
	case errors.Is(err, ErrPermissionDenied):
		return LoadPermission
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return LoadTransport
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.PermissionDenied, codes.Unauthenticated:
			return LoadPermission
		case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled, codes.ResourceExhausted, codes.Aborted:
			return LoadTransport
		}
	}
	return LoadUnknown
}
