package articles

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/bilgisen/newsdesk/internal/models"
)

// writableFields is the allow-list of keys a caller may send on create or
// update. id, created_at and updated_at belong to the store.
var writableFields = map[string]bool{
	"slug":      true,
	"date":      true,
	"kicker":    true,
	"title":     true,
	"excerpt":   true,
	"content":   true,
	"meta":      true,
	"image_url": true,
	"published": true,
}

// nullableFields may be set to JSON null to clear them.
var nullableFields = map[string]bool{
	"meta":      true,
	"image_url": true,
}

// DecodeNewArticle parses a create body. A body that is not a JSON object
// yields ErrMalformedInput; keys outside the allow-list or values of the wrong
// type yield a *ValidationError. Required fields are checked by Create.
func DecodeNewArticle(body []byte) (models.NewArticle, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return models.NewArticle{}, err
	}
	verr := &ValidationError{}
	checkKeys(raw, verr)

	var input models.NewArticle
	for key, value := range raw {
		if !writableFields[key] {
			continue
		}
		var dst any
		switch key {
		case "slug":
			dst = &input.Slug
		case "date":
			dst = &input.Date
		case "kicker":
			dst = &input.Kicker
		case "title":
			dst = &input.Title
		case "excerpt":
			dst = &input.Excerpt
		case "content":
			dst = &input.Content
		case "meta":
			dst = &input.Meta
		case "image_url":
			dst = &input.ImageURL
		case "published":
			dst = &input.Published
		}
		if err := json.Unmarshal(value, dst); err != nil {
			verr.add(key, "type")
		}
	}
	if err := verr.orNil(); err != nil {
		return models.NewArticle{}, err
	}
	return input, nil
}

// DecodePatch parses an update body into a patch. Only keys present in the
// body are set.
func DecodePatch(body []byte) (models.ArticlePatch, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return models.ArticlePatch{}, err
	}
	verr := &ValidationError{}
	checkKeys(raw, verr)

	var patch models.ArticlePatch
	for key, value := range raw {
		if !writableFields[key] {
			continue
		}
		if isNull(value) && !nullableFields[key] {
			verr.add(key, "required")
			continue
		}
		var err error
		switch key {
		case "slug":
			patch.Slug, err = decodeField[string](value)
		case "date":
			patch.Date, err = decodeField[string](value)
		case "kicker":
			patch.Kicker, err = decodeField[string](value)
		case "title":
			patch.Title, err = decodeField[string](value)
		case "excerpt":
			patch.Excerpt, err = decodeField[string](value)
		case "content":
			patch.Content, err = decodeField[string](value)
		case "meta":
			patch.Meta, err = decodeField[*string](value)
		case "image_url":
			patch.ImageURL, err = decodeField[*string](value)
		case "published":
			patch.Published, err = decodeField[bool](value)
		}
		if err != nil {
			verr.add(key, "type")
		}
	}
	if err := verr.orNil(); err != nil {
		return models.ArticlePatch{}, err
	}
	return patch, nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Join(ErrMalformedInput, err)
	}
	if raw == nil {
		return nil, ErrMalformedInput
	}
	return raw, nil
}

func checkKeys(raw map[string]json.RawMessage, verr *ValidationError) {
	for key := range raw {
		if !writableFields[key] {
			verr.add(key, "not_allowed")
		}
	}
}

func decodeField[T any](value json.RawMessage) (models.Field[T], error) {
	var v T
	if err := json.Unmarshal(value, &v); err != nil {
		return models.Field[T]{}, err
	}
	return models.Some(v), nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
