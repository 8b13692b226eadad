package objects

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Codec turns a model value into bytes and back.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

// GobCodec uses Go's native encoding. It is the default for model blobs.
type GobCodec struct{}

func (GobCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode gob: %w", err)
	}
	return buf.Bytes(), nil
}

func (GobCodec) Decode(data []byte, out any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(out); err != nil {
		return fmt.Errorf("decode gob: %w", err)
	}
	return nil
}

// CBORCodec holds the CBOR encoder/decoder configuration.
type CBORCodec struct {
	em cbor.EncMode
	dm cbor.DecMode
}

// NewCBORCodec creates a new CBOR codec with deterministic encoding.
func NewCBORCodec() (*CBORCodec, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("create CBOR encoder: %w", err)
	}

	dm, err := cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		IndefLength:     cbor.IndefLengthAllowed,
		MaxNestedLevels: 32,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("create CBOR decoder: %w", err)
	}

	return &CBORCodec{em: em, dm: dm}, nil
}

func (c *CBORCodec) Encode(v any) ([]byte, error) {
	data, err := c.em.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode CBOR: %w", err)
	}
	return data, nil
}

func (c *CBORCodec) Decode(data []byte, out any) error {
	if err := c.dm.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode CBOR: %w", err)
	}
	return nil
}

// Codecs picks a Codec from a model key's extension. It is safe for concurrent use.
type Codecs struct {
	mu       sync.RWMutex
	byExt    map[string]Codec
	fallback Codec
}

// DefaultCodecs maps ".cbor" to CBOR and everything else to gob.
func DefaultCodecs() (*Codecs, error) {
	cb, err := NewCBORCodec()
	if err != nil {
		return nil, err
	}
	return &Codecs{
		byExt:    map[string]Codec{".cbor": cb, ".gob": GobCodec{}},
		fallback: GobCodec{},
	}, nil
}

// Register binds ext (with leading dot) to c.
func (cs *Codecs) Register(ext string, c Codec) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.byExt[strings.ToLower(ext)] = c
}

// For returns the codec for key.
func (cs *Codecs) For(key string) Codec {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if c, ok := cs.byExt[strings.ToLower(path.Ext(key))]; ok {
		return c
	}
	return cs.fallback
}

// ModelKey joins dir and name; an empty dir leaves name untouched.
func ModelKey(name, dir string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
