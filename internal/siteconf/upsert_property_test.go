package siteconf

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genPropertyName generates dotted lowercase names like site properties use.
func genPropertyName() gopter.Gen {
	return gen.SliceOfN(3, gen.Identifier()).Map(func(parts []string) string {
		return parts[0] + "." + parts[1] + "." + parts[2]
	})
}

// genDocument generates a document with unique property names.
func genDocument() gopter.Gen {
	return gen.SliceOf(gen.Struct(reflect.TypeOf(Property{}), map[string]gopter.Gen{
		"Name":  genPropertyName(),
		"Value": gen.AlphaString(),
	})).Map(func(props []Property) Document {
		seen := make(map[string]bool)
		doc := Document{}
		for _, p := range props {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			doc.Properties = append(doc.Properties, p)
		}
		return doc
	})
}

// countName returns how many properties carry the given name.
func countName(d Document, name string) int {
	n := 0
	for _, p := range d.Properties {
		if p.Name == name {
			n++
		}
	}
	return n
}

func TestUpsertIdempotence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("repeated upserts leave exactly one property with the latest value", prop.ForAll(
		func(doc Document, name, v1, v2 string) bool {
			updated := doc.Upsert(name, v1).Upsert(name, v2)

			if countName(updated, name) != 1 {
				return false
			}
			got, _ := updated.Get(name)
			return got == v2
		},
		genDocument(),
		genPropertyName(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("upserting an existing name never changes document length", prop.ForAll(
		func(doc Document, value string) bool {
			if len(doc.Properties) == 0 {
				return true
			}
			name := doc.Properties[0].Name
			updated := doc.Upsert(name, value)
			return len(updated.Properties) == len(doc.Properties)
		},
		genDocument(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestUpsertPreservesOtherProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("all other properties keep content and relative order", prop.ForAll(
		func(doc Document, name, value string) bool {
			updated := doc.Upsert(name, value)

			var before, after []Property
			for _, p := range doc.Properties {
				if p.Name != name {
					before = append(before, p)
				}
			}
			for _, p := range updated.Properties {
				if p.Name != name {
					after = append(after, p)
				}
			}
			return reflect.DeepEqual(before, after)
		},
		genDocument(),
		genPropertyName(),
		gen.AlphaString(),
	))

	properties.Property("appending a missing name grows the document by exactly one", prop.ForAll(
		func(doc Document, name, value string) bool {
			if countName(doc, name) > 0 {
				return true
			}
			updated := doc.Upsert(name, value)
			if len(updated.Properties) != len(doc.Properties)+1 {
				return false
			}
			last := updated.Properties[len(updated.Properties)-1]
			return last.Name == name && last.Value == value
		},
		genDocument(),
		genPropertyName(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
