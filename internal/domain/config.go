package domain

// KeyPrefix namespaces every key lexchat writes to the database.
const KeyPrefix = "lexchat:"

// LawsCollection is the name of the law document index.
const LawsCollection = "laws"

// DefaultTopK is the number of documents retrieved per query.
const DefaultTopK = 5

// AttributeSchema describes one filterable attribute of the law index,
// declared to the self-query analyzer so it can map natural-language
// constraints onto structured filters.
type AttributeSchema struct {
	Name        string
	Type        string
	Description string
}

// LawAttributes is the attribute schema of the law index.
func LawAttributes() []AttributeSchema {
	return []AttributeSchema{
		{Name: "abbreviation", Type: "string", Description: "Abbreviation of the parsed law"},
		{Name: "title", Type: "string", Description: "Title of the parsed law"},
		{Name: "text", Type: "string", Description: "Text of the law"},
		{Name: "seq", Type: "number", Description: "Sequence number of the law"},
		{Name: "tags", Type: "string[]", Description: "Tags associated with the law"},
	}
}
