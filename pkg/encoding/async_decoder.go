package encoding

import (
	"bytes"
	"fmt"
	"io"
)

// GenericFileType is reported when no decoder claims the buffered content.
const GenericFileType = "Generic"

// WriterDecoder is the contract every typed decoder in this package satisfies.
type WriterDecoder interface {
	io.Writer
	Decode() (any, error)
	DecodeFrom(r io.Reader) (any, error)
	FileType() string
}

// AsyncDecoder fans buffered content out to a set of candidate decoders and
// keeps the first (highest priority) one that decodes cleanly. Decoders run
// concurrently; priority is their constructor order.
type AsyncDecoder struct {
	bytes.Buffer
	decoders []WriterDecoder
	fileType string
}

func NewAsyncDecoder(decoders ...WriterDecoder) *AsyncDecoder {
	return &AsyncDecoder{decoders: decoders}
}

func (d *AsyncDecoder) WithDecoders(decoders ...WriterDecoder) *AsyncDecoder {
	d.decoders = decoders
	return d
}

func (d *AsyncDecoder) Decode() (any, error) {
	if len(d.decoders) == 0 {
		return nil, fmt.Errorf("%w: no decoders configured", ErrEncoding)
	}

	type result struct {
		index int
		obj   any
		err   error
	}

	resultChan := make(chan result, len(d.decoders))
	for i, decoder := range d.decoders {
		go func(index int, decoder WriterDecoder) {
			obj, err := decoder.DecodeFrom(bytes.NewReader(d.Bytes()))
			resultChan <- result{index: index, obj: obj, err: err}
		}(i, decoder)
	}

	results := make([]result, len(d.decoders))
	for range d.decoders {
		res := <-resultChan
		results[res.index] = res
	}

	for i, res := range results {
		if res.err == nil {
			d.fileType = d.decoders[i].FileType()
			return res.obj, nil
		}
	}

	return nil, fmt.Errorf("%w: content did not match any supported file type", ErrEncoding)
}

func (d *AsyncDecoder) DecodeFrom(r io.Reader) (any, error) {
	_, err := d.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return d.Decode()
}

// FileType reports the matched decoder's file type after a successful Decode.
func (d *AsyncDecoder) FileType() string {
	if d.fileType == "" {
		return GenericFileType
	}
	return d.fileType
}

func (d *AsyncDecoder) Reset() {
	d.Buffer.Reset()
	d.fileType = ""
}
