package objects

import (
	"context"
	"io"
	"time"

	"cloud-storage/core/storage"
)

// BucketRef is a lazily resolved bucket handle. Creating one never touches the network.
type BucketRef struct {
	Name   string
	client storage.Client
}

// Objects lists every object whose key starts with prefix.
func (b *BucketRef) Objects(ctx context.Context, prefix string) ([]ObjectRef, error) {
	infos, err := b.client.ListObjects(ctx, b.Name, prefix)
	if err != nil {
		return nil, err
	}
	refs := make([]ObjectRef, len(infos))
	for i, info := range infos {
		refs[i] = b.ref(info)
	}
	return refs, nil
}

// Object returns a reference to key without checking that it exists.
func (b *BucketRef) Object(key string) ObjectRef {
	return b.ref(storage.ObjectInfo{Key: key})
}

func (b *BucketRef) ref(info storage.ObjectInfo) ObjectRef {
	return ObjectRef{
		Bucket:       b.Name,
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: info.LastModified,
		client:       b.client,
	}
}

// ObjectRef identifies one stored object. Only refs obtained from a BucketRef can be read.
type ObjectRef struct {
	Bucket       string    `json:"bucket"`
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty"`

	client storage.Client
}

// Resolved reports whether the ref is bound to a backend and can fetch its body.
func (o ObjectRef) Resolved() bool {
	return o.client != nil && o.Bucket != "" && o.Key != ""
}

// Get opens the object body.
func (o ObjectRef) Get(ctx context.Context) (io.ReadCloser, error) {
	return o.client.GetObject(ctx, o.Bucket, o.Key)
}

// Match is the result of a key lookup: exactly one object (Single) or anything else (Multiple).
type Match interface {
	// All returns every matched object.
	All() []ObjectRef
	isMatch()
}

// Single is a lookup that matched exactly one object.
type Single struct {
	Object ObjectRef
}

// Multiple is a lookup that matched zero or two-plus objects.
type Multiple struct {
	Objects []ObjectRef
}

func (s Single) All() []ObjectRef   { return []ObjectRef{s.Object} }
func (m Multiple) All() []ObjectRef { return m.Objects }

func (Single) isMatch()   {}
func (Multiple) isMatch() {}
