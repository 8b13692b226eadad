package objects

import "io"

// Content is what ReadObject returns: Raw bytes, decoded Text, or a seekable Stream.
type Content interface {
	isContent()
}

// Raw is the undecoded object body.
type Raw []byte

// Text is the body decoded as UTF-8.
type Text string

// Stream wraps the body in a seekable reader.
type Stream struct {
	io.ReadSeeker
}

func (Raw) isContent()    {}
func (Text) isContent()   {}
func (Stream) isContent() {}
