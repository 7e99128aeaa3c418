package entities

import (
	"strings"
	"time"

	domainerrors "kdom/contexts/content-governance/governance-service/domain/errors"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

type CollaborationRequest struct {
	RequestID       string
	ItemID          string
	RequesterID     string
	Status          RequestStatus
	Message         string
	RejectionReason string
	ReviewerID      string
	CreatedAt       time.Time
	ReviewedAt      *time.Time
}

func NewCollaborationRequest(
	requestID string,
	itemID string,
	requesterID string,
	message string,
	createdAt time.Time,
) (CollaborationRequest, error) {
	if strings.TrimSpace(requestID) == "" ||
		strings.TrimSpace(itemID) == "" ||
		strings.TrimSpace(requesterID) == "" ||
		len(message) > 2000 {
		return CollaborationRequest{}, domainerrors.ErrInvalidInput
	}
	return CollaborationRequest{
		RequestID:   requestID,
		ItemID:      itemID,
		RequesterID: requesterID,
		Status:      RequestStatusPending,
		Message:     strings.TrimSpace(message),
		CreatedAt:   createdAt.UTC(),
	}, nil
}

func (r CollaborationRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
