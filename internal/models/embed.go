package models

import "time"

// EmbedDomainStatus is the review state of an embed-domain request.
type EmbedDomainStatus string

const (
	EmbedDomainSubmitted EmbedDomainStatus = "submitted"
	EmbedDomainPending   EmbedDomainStatus = "pending"
	EmbedDomainApproved  EmbedDomainStatus = "approved"
	EmbedDomainDenied    EmbedDomainStatus = "denied"
)

// embedDomainTransitions is the closed transition table. Requests awaiting a
// decision can be approved or denied; a denial can re-enter review as
// pending. Nothing else is legal.
var embedDomainTransitions = map[EmbedDomainStatus][]EmbedDomainStatus{
	EmbedDomainSubmitted: {EmbedDomainApproved, EmbedDomainDenied},
	EmbedDomainPending:   {EmbedDomainApproved, EmbedDomainDenied},
	EmbedDomainDenied:    {EmbedDomainPending},
	EmbedDomainApproved:  {},
}

func (s EmbedDomainStatus) Valid() bool {
	_, ok := embedDomainTransitions[s]
	return ok
}

// AwaitingDecision reports whether the status counts as an in-flight request.
// Submitted and pending are equivalent for uniqueness and review eligibility.
func (s EmbedDomainStatus) AwaitingDecision() bool {
	return s == EmbedDomainSubmitted || s == EmbedDomainPending
}

func (s EmbedDomainStatus) CanTransition(to EmbedDomainStatus) bool {
	for _, next := range embedDomainTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// FormEmbedDomain is an allow-list entry for iframe embedding, unique per
// (form, domain) pair.
type FormEmbedDomain struct {
	Base
	FormID      string            `gorm:"type:uuid;not null;index:idx_form_embed_domain,unique" json:"formId"`
	Form        *Form             `json:"form,omitempty"`
	Domain      string            `gorm:"not null;index:idx_form_embed_domain,unique" json:"domain"`
	Status      EmbedDomainStatus `gorm:"not null;default:'submitted'" json:"status"`
	RequestedBy string            `gorm:"not null" json:"requestedBy"`
	RequestedAt time.Time         `gorm:"not null" json:"requestedAt"`

	History []FormEmbedDomainHistory `gorm:"foreignKey:DomainID;constraint:OnDelete:CASCADE" json:"history,omitempty"`
}

// FormEmbedDomainHistory is the append-only audit trail of status changes.
// Rows are never updated and are deleted only together with their domain.
type FormEmbedDomainHistory struct {
	Base
	DomainID       string            `gorm:"type:uuid;not null;index" json:"domainId"`
	PreviousStatus EmbedDomainStatus `gorm:"not null" json:"previousStatus"`
	NewStatus      EmbedDomainStatus `gorm:"not null" json:"newStatus"`
	Actor          string            `gorm:"not null" json:"actor"`
}
