package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vodfgo/vodf/vodf"
)

const (
	logMsgResolved      = "component payload resolved"
	logMsgResolveFailed = "resolving component payload failed"
	logAttrLocation     = "location"
	logAttrDriver       = "driver"
	logAttrBytes        = "bytes"
	logAttrError        = "error"
)

// Resolver implements vodf.ComponentResolver on top of a Store.
type Resolver struct {
	store    Store
	maxBytes int64
	logger   vodf.ContextualLogger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMaxPayloadBytes rejects payloads larger than n bytes. Zero means unlimited.
func WithMaxPayloadBytes(n int64) ResolverOption {
	return func(r *Resolver) {
		r.maxBytes = n
	}
}

// WithResolverLogger logs every resolution at debug level and failures at error level.
func WithResolverLogger(logger vodf.ContextualLogger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver reading from store.
func NewResolver(store Store, options ...ResolverOption) (*Resolver, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	r := &Resolver{store: store}
	for _, option := range options {
		option(r)
	}

	return r, nil
}

// Resolve reads the object addressed by loc.
func (r *Resolver) Resolve(ctx context.Context, loc vodf.Location) ([]byte, error) {
	payload, err := r.read(ctx, ObjectKey(loc))
	if err != nil {
		if r.logger != nil {
			r.logger.ErrorContext(ctx, logMsgResolveFailed,
				logAttrLocation, loc.String(),
				logAttrDriver, string(r.store.Driver()),
				logAttrError, err.Error())
		}

		return nil, errors.Join(ErrResolveFailure, err)
	}

	if r.logger != nil {
		r.logger.DebugContext(ctx, logMsgResolved,
			logAttrLocation, loc.String(),
			logAttrDriver, string(r.store.Driver()),
			logAttrBytes, len(payload))
	}

	return payload, nil
}

func (r *Resolver) read(ctx context.Context, key string) ([]byte, error) {
	info, body, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	if r.maxBytes > 0 && info.Size > r.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrPayloadTooBig, key, info.Size)
	}

	reader := io.Reader(body)
	if r.maxBytes > 0 {
		reader = io.LimitReader(body, r.maxBytes+1)
	}

	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if r.maxBytes > 0 && int64(len(payload)) > r.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrPayloadTooBig, key)
	}

	return payload, nil
}

// Upload stores payload at the object addressed by loc.
func Upload(ctx context.Context, store Store, loc vodf.Location, payload []byte) (Info, error) {
	if store == nil {
		return Info{}, ErrNilStore
	}

	return store.Put(ctx, ObjectKey(loc), bytes.NewReader(payload))
}

var _ vodf.ComponentResolver = (*Resolver)(nil)
