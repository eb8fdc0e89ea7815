package mirror

import (
	"fmt"
	"io"

	"github.com/martenlienen/gogs-github-mirror/internal/gogs"
	"github.com/martenlienen/gogs-github-mirror/internal/repository"
)

const (
	organizationAnnouncementTemplateConstant = "Mirror to organization %s"
	userAnnouncementTemplateConstant         = "Mirror to user %s"
	createdStatusTemplateConstant            = "Mirror for %s set up"
	alreadyExistsStatusTemplateConstant      = "Repository %s already exists"
	unknownStatusTemplateConstant            = "Unknown error %d for repo %s"
	plannedStatusTemplateConstant            = "Would mirror %s"
	listingLineTemplateConstant              = "%s\t%s\tfork=%t\tprivate=%t"
)

// StatusPrinter writes one human-readable line per event of a run.
type StatusPrinter struct {
	writer io.Writer
}

// NewStatusPrinter constructs a printer; a nil writer discards output.
func NewStatusPrinter(writer io.Writer) StatusPrinter {
	if writer == nil {
		writer = io.Discard
	}
	return StatusPrinter{writer: writer}
}

// Announce names the account the mirrors are created under.
func (printer StatusPrinter) Announce(organization string, targetUser string) {
	fmt.Fprintln(printer.writer, FormatAnnouncement(organization, targetUser))
}

// Registration prints the outcome of one migration request.
func (printer StatusPrinter) Registration(registration gogs.Registration) {
	fmt.Fprintln(printer.writer, FormatRegistration(registration))
}

// Planned prints a repository that a dry run would submit.
func (printer StatusPrinter) Planned(descriptor repository.Descriptor) {
	fmt.Fprintf(printer.writer, plannedStatusTemplateConstant+"\n", descriptor.Name)
}

// Listing prints a repository selected by the list command.
func (printer StatusPrinter) Listing(descriptor repository.Descriptor) {
	fmt.Fprintf(printer.writer, listingLineTemplateConstant+"\n", descriptor.Name, descriptor.CloneURL, descriptor.IsFork, descriptor.Private)
}

// FormatAnnouncement renders the owner announcement line.
func FormatAnnouncement(organization string, targetUser string) string {
	if len(organization) > 0 {
		return fmt.Sprintf(organizationAnnouncementTemplateConstant, organization)
	}
	return fmt.Sprintf(userAnnouncementTemplateConstant, targetUser)
}

// FormatRegistration renders the status line for an outcome.
func FormatRegistration(registration gogs.Registration) string {
	name := registration.Repository.Name
	switch registration.Outcome.Kind {
	case gogs.OutcomeCreated:
		return fmt.Sprintf(createdStatusTemplateConstant, name)
	case gogs.OutcomeAlreadyExists:
		return fmt.Sprintf(alreadyExistsStatusTemplateConstant, name)
	default:
		return fmt.Sprintf(unknownStatusTemplateConstant, registration.Outcome.StatusCode, name)
	}
}
