package domain

type MatchQuery struct {
	Title string
	Year  int
	Kind  MediaKind
	// ExternalID and AlternateID carry ids already embedded in the filename.
	ExternalID  int
	AlternateID string
}

// TitleMatch is what a metadata provider knows about a title.
type TitleMatch struct {
	ExternalID  int
	AlternateID string
	Kind        MediaKind
	Descriptive Descriptive
}

func (m TitleMatch) Key() TitleKey {
	return TitleKey{ExternalID: m.ExternalID, AlternateID: m.AlternateID}
}

type CatalogFilter struct {
	Genre  string
	Search string
	Offset int
	Limit  int
}
