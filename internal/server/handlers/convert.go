package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/metakeeper/internal/server/models"
)

// Element is a stored element whose properties were decoded into the
// category's property type.
type Element[P any] struct {
	GUID       string    `json:"guid"`
	TypeName   string    `json:"typeName"`
	AnchorGUID string    `json:"anchorGUID,omitempty"`
	Version    int64     `json:"version"`
	CreatedBy  string    `json:"createdBy"`
	UpdatedBy  string    `json:"updatedBy"`
	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
	Properties P         `json:"properties"`
}

// toProperties flattens typed properties into the generic map the store
// keeps. Fields tagged omitempty that are unset do not appear.
func toProperties[P any](p P) (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode properties: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("encode properties: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func fromProperties[P any](props map[string]any) (P, error) {
	var p P
	raw, err := json.Marshal(props)
	if err != nil {
		return p, fmt.Errorf("decode properties: %w", err)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("decode properties: %w", err)
	}
	return p, nil
}

// decodeStrict parses JSON properties coming from the wire. Unknown keys are
// rejected so a misspelt property never silently disappears.
func decodeStrict[P any](raw []byte) (P, error) {
	var p P
	if len(bytes.TrimSpace(raw)) == 0 {
		return p, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	err := dec.Decode(&p)
	return p, err
}

func (e *Element[P]) untyped() (*models.Element, error) {
	props, err := toProperties(e.Properties)
	if err != nil {
		return nil, err
	}
	return &models.Element{
		GUID:       e.GUID,
		TypeName:   e.TypeName,
		AnchorGUID: e.AnchorGUID,
		Version:    e.Version,
		CreatedBy:  e.CreatedBy,
		UpdatedBy:  e.UpdatedBy,
		CreateTime: e.CreateTime,
		UpdateTime: e.UpdateTime,
		Properties: props,
	}, nil
}

// nullFields lists the properties of P that raw explicitly sets to null.
// Only exact field names count, the way the store keys them.
func nullFields[P any](raw []byte) ([]string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	known := jsonFieldNames(reflect.TypeFor[P]())
	var out []string
	for name, v := range fields {
		if string(bytes.TrimSpace(v)) != "null" {
			continue
		}
		if !known[name] {
			return nil, fmt.Errorf("json: unknown field %q", name)
		}
		out = append(out, name)
	}
	slices.Sort(out)
	return out, nil
}

func jsonFieldNames(t reflect.Type) map[string]bool {
	names := make(map[string]bool, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names[name] = true
	}
	return names
}

func typed[P any](e *models.Element) (*Element[P], error) {
	props, err := fromProperties[P](e.Properties)
	if err != nil {
		return nil, err
	}
	return &Element[P]{
		GUID:       e.GUID,
		TypeName:   e.TypeName,
		AnchorGUID: e.AnchorGUID,
		Version:    e.Version,
		CreatedBy:  e.CreatedBy,
		UpdatedBy:  e.UpdatedBy,
		CreateTime: e.CreateTime,
		UpdateTime: e.UpdateTime,
		Properties: props,
	}, nil
}
