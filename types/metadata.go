package types

// PropertyMetadata describes a single property of a collection schema as
// supplied by the external metadata service
type PropertyMetadata struct {
	Code             string `json:"code" validate:"required"`
	Name             string `json:"name"`
	PropertyTypeCode string `json:"propertyTypeCode" validate:"required"`
	IsRequired       bool   `json:"isRequired"`
}

// CollectionMetadata describes a collection schema. It is consumed only by
// validation; evaluation never reads schema metadata.
type CollectionMetadata struct {
	Code       string             `json:"code" validate:"required"`
	Name       string             `json:"name"`
	Properties []PropertyMetadata `json:"properties" validate:"dive"`
}

// Property returns the property with the given code, or nil
func (c *CollectionMetadata) Property(code string) *PropertyMetadata {
	if c == nil {
		return nil
	}
	for i := range c.Properties {
		if c.Properties[i].Code == code {
			return &c.Properties[i]
		}
	}
	return nil
}

// PropertyCodes returns the codes of all properties, used for
// did-you-mean suggestions
func (c *CollectionMetadata) PropertyCodes() []string {
	if c == nil {
		return nil
	}
	codes := make([]string, 0, len(c.Properties))
	for i := range c.Properties {
		codes = append(codes, c.Properties[i].Code)
	}
	return codes
}
