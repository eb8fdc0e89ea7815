package repository

// Descriptor captures the source repository attributes required to set up a mirror.
type Descriptor struct {
	Name        string
	CloneURL    string
	Private     bool
	Description *string
	OwnerLogin  string
	IsFork      bool
}

// DescriptionText returns the description or an empty string when the source reported none.
func (descriptor Descriptor) DescriptionText() string {
	if descriptor.Description == nil {
		return ""
	}
	return *descriptor.Description
}
