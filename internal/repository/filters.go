package repository

// FilterOwnedBy keeps descriptors whose owner login exactly equals the provided login.
// Repositories visible through organization membership are removed.
func FilterOwnedBy(descriptors []Descriptor, ownerLogin string) []Descriptor {
	filtered := make([]Descriptor, 0, len(descriptors))
	for _, descriptor := range descriptors {
		if descriptor.OwnerLogin != ownerLogin {
			continue
		}
		filtered = append(filtered, descriptor)
	}
	return filtered
}

// FilterForks removes fork descriptors unless includeForks is set.
func FilterForks(descriptors []Descriptor, includeForks bool) []Descriptor {
	filtered := make([]Descriptor, 0, len(descriptors))
	for _, descriptor := range descriptors {
		if descriptor.IsFork && !includeForks {
			continue
		}
		filtered = append(filtered, descriptor)
	}
	return filtered
}

// Names lists descriptor names in order.
func Names(descriptors []Descriptor) []string {
	names := make([]string, 0, len(descriptors))
	for _, descriptor := range descriptors {
		names = append(names, descriptor.Name)
	}
	return names
}
