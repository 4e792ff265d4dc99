// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/diffeo/go-restmount/restdata"
)

// typeMap lists the media types a response can be sent as.  All of
// them carry the same JSON body.
var typeMap = map[string]bool{
	"text/json":              true,
	"application/json":       true,
	restdata.JSONMediaType:   true,
	restdata.V1JSONMediaType: true,
}

// errBadAccept is returned from negotiateResponse() if the Accept:
// header is malformed (and no more specific error applies).
var errBadAccept = errors.New("Invalid Accept: header")

// errNotAcceptable is returned from negotiateResponse() if the Accept:
// header does not mention any media types we can actually return.
type errNotAcceptable struct{}

func (e errNotAcceptable) Error() string {
	return "No acceptable representation for response"
}

func (e errNotAcceptable) HTTPStatus() int {
	return http.StatusNotAcceptable
}

// responseType picks the Content-Type: for a response body.  Clients
// that ask for something unusual still get JSON.
func responseType(req *http.Request) string {
	if req == nil {
		return "application/json"
	}
	mediaType, err := negotiateResponse(req)
	if err != nil {
		return "application/json"
	}
	return mediaType
}

// negotiateResponse returns a supported MIME type for the response
// body, following the path laid out in RFC 7231 section 5.3.
func negotiateResponse(req *http.Request) (string, error) {
	accept := req.Header.Get("Accept")
	if accept == "" {
		accept = "*/*"
	}
	bestType := ""
	bestQ := 0.0
	mediaRanges := strings.Split(accept, ",")
	for _, mediaRange := range mediaRanges {
		mediaRange = strings.TrimSpace(mediaRange)
		mediaType, params, err := mime.ParseMediaType(mediaRange)
		if err != nil {
			return "", err
		}

		q := 1.0
		if qStr, haveQ := params["q"]; haveQ {
			q, err = strconv.ParseFloat(qStr, 64)
			if err != nil {
				return "", err
			}
			if q < 0.0 || q > 1.0 {
				return "", errBadAccept
			}
		}
		if q < bestQ {
			continue
		}

		// Specific types override wildcards, and text/* and
		// application/* override */*; the first type at a
		// given q wins.
		switch {
		case mediaType == "*/*":
			if q > bestQ {
				bestType = mediaType
				bestQ = q
			}
		case mediaType == "text/*" || mediaType == "application/*":
			if q > bestQ || bestType == "*/*" {
				bestType = mediaType
				bestQ = q
			}
		case typeMap[mediaType]:
			if q > bestQ || isWildcard(bestType) {
				bestType = mediaType
				bestQ = q
			}
		}
	}
	if bestQ == 0.0 {
		return "", errNotAcceptable{}
	}
	switch bestType {
	case "*/*", "application/*":
		return "application/json", nil
	case "text/*":
		return "text/json", nil
	default:
		return bestType, nil
	}
}

func isWildcard(mediaType string) bool {
	return mediaType == "*/*" || mediaType == "text/*" || mediaType == "application/*"
}
