package archive

import "github.com/mentionpulse/alert-engine/internal/models"

// Archiver persists delivery-outcome events for the external dashboard.
type Archiver interface {
	ArchiveOutcomes(events []models.OutcomeEvent) error
}
