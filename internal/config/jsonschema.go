package config

import (
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/roach88/inboxsim/internal/lineitem"
)

// JSONSchema describes the config file format for editors. Every field is
// optional since files are layered over the defaults. The embedded CUE
// schema stays authoritative for value ranges.
func JSONSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		Mapper:                     mapType,
	}
	s := r.Reflect(new(Config))
	s.Title = "inboxsim configuration"
	s.Description = "Tunables for the inbox simulation. Omitted fields keep their defaults."
	return s
}

var rangeType = reflect.TypeOf(lineitem.Range{})

// mapType covers types whose JSON form differs from their Go shape.
func mapType(t reflect.Type) *jsonschema.Schema {
	if t != rangeType {
		return nil
	}
	return &jsonschema.Schema{
		Description: "A number, or a [min, max] pair.",
		OneOf: []*jsonschema.Schema{
			{Type: "number"},
			{Type: "array", Items: &jsonschema.Schema{Type: "number"}},
		},
	}
}
