package siteconf

// Upsert returns a copy of the document where the property with the given
// name (exact, case-sensitive match) holds value. An existing property keeps
// its position and its other fields; a missing property is appended at the
// end. Repeated calls with the same name never produce duplicates, so the
// latest value always survives alone.
func (d Document) Upsert(name, value string) Document {
	props := make([]Property, len(d.Properties))
	copy(props, d.Properties)
	d.Properties = props

	for i := range d.Properties {
		if d.Properties[i].Name == name {
			d.Properties[i].Value = value
			return d
		}
	}

	d.Properties = append(d.Properties, Property{Name: name, Value: value})
	return d
}
