package tables

import (
	"io"

	farm "github.com/dgryski/go-farm"
	jsoniter "github.com/json-iterator/go"
	"github.com/pingcap/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal returns indented JSON encoding of tables. Identical tables produce identical output.
func (t *Tables) Marshal() ([]byte, error) {
	data, e := json.MarshalIndent(t, "", "  ")
	if e != nil {
		return nil, errors.Trace(e)
	}
	return append(data, '\n'), nil
}

// Encode writes indented JSON encoding of tables to w.
func Encode(w io.Writer, t *Tables) error {
	data, e := t.Marshal()
	if e != nil {
		return e
	}

	_, e = w.Write(data)
	return errors.Trace(e)
}

// Decode reads and validates tables written by Encode.
func Decode(r io.Reader) (*Tables, error) {
	t := &Tables{}
	e := json.NewDecoder(r).Decode(t)
	if e != nil {
		return nil, decodeError(e)
	}

	e = t.Validate()
	if e != nil {
		return nil, e
	}

	return t, nil
}

// Fingerprint returns 64-bit fingerprint of JSON encoding.
func (t *Tables) Fingerprint() uint64 {
	data, e := t.Marshal()
	if e != nil {
		return 0
	}
	return farm.Fingerprint64(data)
}
