// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"errors"
	"io"
	"io/ioutil"
	"mime"
	"reflect"

	"github.com/ugorji/go/codec"
)

// jsonHandle returns a codec handle that decodes JSON objects as
// map[string]interface{}, the shape mapper.Record expects.
func jsonHandle() *codec.JsonHandle {
	json := &codec.JsonHandle{}
	json.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return json
}

// IsJSON determines whether a media type is one of the JSON types
// this package understands.
func IsJSON(mediaType string) bool {
	switch mediaType {
	case "text/json", "application/json", JSONMediaType, V1JSONMediaType:
		return true
	}
	return false
}

// Decode tries to decode a restdata object from a reader, such as an
// HTTP request or response.  out must be a pointer type.  An empty
// body returns io.EOF.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		// We could also consider http.DetectContentType()
		contentType = "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ErrBadRequest{Err: err}
	}
	if !IsJSON(mediaType) {
		return ErrUnsupportedMediaType{Type: mediaType}
	}

	body, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return io.EOF
	}
	decoder := codec.NewDecoderBytes(body, jsonHandle())
	err = decoder.Decode(out)
	if err != nil {
		return ErrBadRequest{Err: err}
	}
	var extra interface{}
	if err = decoder.Decode(&extra); err != io.EOF {
		return ErrBadRequest{Err: errTrailingData}
	}
	return nil
}

var errTrailingData = errors.New("trailing data after JSON body")

// Encode writes v to w as JSON.
func Encode(w io.Writer, v interface{}) error {
	encoder := codec.NewEncoder(w, jsonHandle())
	return encoder.Encode(v)
}
