package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"blogapi/app/models"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var errNotObject = errors.New("request body must be a JSON object")

// decodeFields reads a JSON object body and returns its scalar members as
// strings. When the object wraps the fields under resource, as in
// {"post": {...}}, the inner object is used. Strings are taken as is, null
// becomes "", numbers and booleans keep their literal text. Nested objects and
// arrays are not permitted values and are dropped. An empty body decodes to no
// fields.
func decodeFields(r *http.Request, resource string) (map[string]*string, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return map[string]*string{}, nil
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil || members == nil {
		return nil, errNotObject
	}

	if inner, ok := members[resource]; ok {
		var wrapped map[string]json.RawMessage
		if json.Unmarshal(inner, &wrapped) == nil && wrapped != nil {
			members = wrapped
		}
	}

	fields := make(map[string]*string, len(members))
	for name, value := range members {
		if s, ok := scalarText(value); ok {
			fields[name] = &s
		}
	}
	return fields, nil
}

func scalarText(value json.RawMessage) (string, bool) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	switch value[0] {
	case 'n':
		return "", true
	case '"':
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		return "", false
	default:
		return string(value), true
	}
}

func postParams(fields map[string]*string) models.PostParams {
	return models.PostParams{
		Title:  fields["title"],
		Author: fields["author"],
		Body:   fields["body"],
	}
}

func commentParams(fields map[string]*string) models.CommentParams {
	return models.CommentParams{
		Author: fields["author"],
		Body:   fields["body"],
	}
}

// bodyError turns a decoding failure into a 422 payload.
func bodyError(err error) error {
	if errors.Is(err, errNotObject) {
		return models.ValidationErrors{"base": {"must be a JSON object"}}
	}
	return err
}
