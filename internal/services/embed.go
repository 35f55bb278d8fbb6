package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"formgate/internal/events"
	"formgate/internal/models"
)

var (
	// ErrInvalidOrigin reports an Origin header that could not be parsed as
	// a URL with a hostname. Callers must fail closed on it.
	ErrInvalidOrigin = errors.New("embed: origin is not a valid URL")

	// ErrDomainNotFound reports an operation addressing a domain id that
	// does not exist.
	ErrDomainNotFound = errors.New("embed: domain not found")

	// ErrInvalidDecision reports a review decision outside approved/denied.
	ErrInvalidDecision = errors.New("embed: decision must be approved or denied")
)

// ConflictError reports a domain request that collides with an existing row:
// a duplicate in-flight request, an already-approved domain, or a review of
// a row that already reached a terminal status.
type ConflictError struct {
	Domain string
	Status models.EmbedDomainStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("embed: domain %q already has status %s", e.Domain, e.Status)
}

// EmbedService is the registry and trust evaluator for per-form embed
// domains. Status changes and their audit rows always commit together.
type EmbedService struct {
	db *gorm.DB
}

func NewEmbedService(db *gorm.DB) *EmbedService {
	return &EmbedService{db: db}
}

// RequestDomain registers domain for embedding on a form. New domains start
// in submitted. A previously denied domain may be resubmitted and re-enters
// review as pending, with the denied→pending change recorded in history.
// Any other existing row is a conflict; duplicate in-flight requests are
// never silently absorbed.
func (s *EmbedService) RequestDomain(ctx context.Context, formID, domain, actor string) (*models.FormEmbedDomain, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))

	var record models.FormEmbedDomain
	event := "embed_domain.requested"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.FormEmbedDomain
		err := tx.Where("form_id = ? AND domain = ?", formID, domain).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.FormEmbedDomain{
				FormID:      formID,
				Domain:      domain,
				Status:      models.EmbedDomainSubmitted,
				RequestedBy: actor,
				RequestedAt: time.Now(),
			}
			// the unique (form_id, domain) index serializes racing requests;
			// the loser sees a duplicated-key error here
			if createErr := tx.Create(&record).Error; createErr != nil {
				if errors.Is(createErr, gorm.ErrDuplicatedKey) {
					return &ConflictError{Domain: domain, Status: models.EmbedDomainSubmitted}
				}
				return createErr
			}
			return nil
		case err != nil:
			return err
		}

		if existing.Status != models.EmbedDomainDenied {
			return &ConflictError{Domain: domain, Status: existing.Status}
		}

		// resubmission after denial: audit row first, then the status flip,
		// both inside this transaction
		history := models.FormEmbedDomainHistory{
			DomainID:       existing.ID,
			PreviousStatus: models.EmbedDomainDenied,
			NewStatus:      models.EmbedDomainPending,
			Actor:          actor,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":       models.EmbedDomainPending,
			"requested_by": actor,
			"requested_at": now,
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}

		existing.Status = models.EmbedDomainPending
		existing.RequestedBy = actor
		existing.RequestedAt = now
		record = existing
		event = "embed_domain.resubmitted"
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Emit(event, &record)
	return &record, nil
}

// ReviewDomainRequest moves an awaiting-decision request to approved or
// denied and appends the audit row in the same transaction. Rows that
// already reached a terminal status are rejected untouched.
func (s *EmbedService) ReviewDomainRequest(ctx context.Context, domainID string, decision models.EmbedDomainStatus, actor string) (*models.FormEmbedDomain, error) {
	if decision != models.EmbedDomainApproved && decision != models.EmbedDomainDenied {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidDecision, decision)
	}

	var record models.FormEmbedDomain
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&record, "id = ?", domainID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDomainNotFound
		}
		if err != nil {
			return err
		}

		if !record.Status.CanTransition(decision) {
			return &ConflictError{Domain: record.Domain, Status: record.Status}
		}

		history := models.FormEmbedDomainHistory{
			DomainID:       record.ID,
			PreviousStatus: record.Status,
			NewStatus:      decision,
			Actor:          actor,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		if err := tx.Model(&record).Update("status", decision).Error; err != nil {
			return err
		}
		record.Status = decision
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Emit("embed_domain."+string(record.Status), &record)
	return &record, nil
}

// RemoveDomain hard-deletes the domain row and its entire history. This is
// permanent administrative cleanup, not part of the review workflow.
func (s *EmbedService) RemoveDomain(ctx context.Context, domainID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("domain_id = ?", domainID).Delete(&models.FormEmbedDomainHistory{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.FormEmbedDomain{}, "id = ?", domainID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDomainNotFound
		}
		return nil
	})
}

// GetDomain fetches a single domain row by id.
func (s *EmbedService) GetDomain(ctx context.Context, domainID string) (*models.FormEmbedDomain, error) {
	var record models.FormEmbedDomain
	err := s.db.WithContext(ctx).First(&record, "id = ?", domainID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDomainNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListAllowedDomains returns the approved domains for a form.
func (s *EmbedService) ListAllowedDomains(ctx context.Context, formID string) ([]models.FormEmbedDomain, error) {
	var domains []models.FormEmbedDomain
	err := s.db.WithContext(ctx).
		Where("form_id = ? AND status = ?", formID, models.EmbedDomainApproved).
		Order("domain").
		Find(&domains).Error
	return domains, err
}

// ListRequestedDomains returns the form's domains, optionally filtered by
// status. An empty filter returns everything.
func (s *EmbedService) ListRequestedDomains(ctx context.Context, formID string, statuses []models.EmbedDomainStatus) ([]models.FormEmbedDomain, error) {
	query := s.db.WithContext(ctx).Where("form_id = ?", formID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var domains []models.FormEmbedDomain
	err := query.Order("requested_at DESC").Find(&domains).Error
	return domains, err
}

// DomainHistory returns the audit trail for a domain, newest first.
func (s *EmbedService) DomainHistory(ctx context.Context, domainID string) ([]models.FormEmbedDomainHistory, error) {
	var history []models.FormEmbedDomainHistory
	err := s.db.WithContext(ctx).
		Where("domain_id = ?", domainID).
		Order("created_at DESC").
		Find(&history).Error
	return history, err
}

// AllowsOrigin decides whether the given Origin header value may embed the
// form. An absent origin is denied without error; an unparseable one yields
// ErrInvalidOrigin. Store errors propagate so callers never fail open.
//
// Matching is two-way substring containment: an approved entry example.com
// matches the request host sub.example.com and the other way around. This
// mirrors the registry's historical LIKE-based lookup and is intentionally
// not tightened to suffix matching.
func (s *EmbedService) AllowsOrigin(ctx context.Context, formID, origin string) (bool, error) {
	if origin == "" {
		return false, nil
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}

	approved, err := s.ListAllowedDomains(ctx, formID)
	if err != nil {
		return false, err
	}

	for _, entry := range approved {
		registered := strings.ToLower(entry.Domain)
		if strings.Contains(host, registered) || strings.Contains(registered, host) {
			return true, nil
		}
	}
	return false, nil
}
