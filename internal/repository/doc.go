// Package repository defines the repository descriptors shared by the source
// lister and the mirror registrar, together with the pure filters applied
// between fetching and mirroring.
package repository
