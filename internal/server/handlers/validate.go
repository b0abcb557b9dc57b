package handlers

import (
	"regexp"

	"github.com/dmitrijs2005/metakeeper/internal/common"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
)

func requireParam(op, name, value string) error {
	if value == "" {
		return common.NewInvalidParameter(op, name, "must not be empty")
	}
	return nil
}

func requireParams(op string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := requireParam(op, pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func validatePaging(op string, opts models.SearchOptions, maxPageSize int) error {
	if opts.StartFrom < 0 {
		return common.NewInvalidParameter(op, "startFrom", "must not be negative")
	}
	if opts.PageSize < 0 {
		return common.NewInvalidParameter(op, "pageSize", "must not be negative")
	}
	if opts.PageSize > maxPageSize {
		return common.NewInvalidParameter(op, "pageSize", "exceeds the maximum page size")
	}
	return nil
}

func validateSearchString(op, searchString string) error {
	if err := requireParam(op, "searchString", searchString); err != nil {
		return err
	}
	if _, err := regexp.Compile(searchString); err != nil {
		return common.NewInvalidParameter(op, "searchString", err.Error())
	}
	return nil
}

func requireProperty(op string, props map[string]any, name string) error {
	v, ok := props[name]
	if !ok {
		return common.NewInvalidParameter(op, name, "must not be empty")
	}
	if s, isString := v.(string); isString && s == "" {
		return common.NewInvalidParameter(op, name, "must not be empty")
	}
	return nil
}

// oneOf returns a validator that accepts an unset property or one of the
// allowed values.
func oneOf(name string, allowed ...string) func(op string, props map[string]any) error {
	return func(op string, props map[string]any) error {
		v, ok := props[name]
		if !ok {
			return nil
		}
		s, _ := v.(string)
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return common.NewInvalidParameter(op, name, "unsupported value")
	}
}
