package records

type ListRecordsQuery struct {
	Limit        int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=500"`
	Offset       int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	AuthorSource *string `query:"author_source" json:"author_source,omitempty" validate:"omitempty,oneof=folder_dataset filename metadata consensus collection"`
	Search       *string `query:"search" json:"search,omitempty" mod:"trim" validate:"omitempty,min=1,max=200"`
}
