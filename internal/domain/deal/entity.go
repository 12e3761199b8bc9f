// internal/domain/deal/entity.go
package deal

import (
	"errors"
	"strings"
	"time"
)

// ========================================
// Stage
// ========================================

// Stage は営業パイプライン上の位置を表します。
// オンボーディングの「ステップ」とは別物です。
type Stage string

const (
	StageLead               Stage = "lead"
	StageQualified          Stage = "qualified"
	StageColdOutreach       Stage = "cold-outreach"
	StageFollowUp           Stage = "follow-up"
	StageDiscoveryScheduled Stage = "discovery-scheduled"
	StageDiscoveryCompleted Stage = "discovery-completed"
	StageOnboardingPortal   Stage = "onboarding-portal"
	StageCampaignLive       Stage = "campaign-live"
	StageFollowUpResell     Stage = "follow-up-resell"
	StageCompleted          Stage = "completed"
	StageClosedLost         Stage = "closed-lost"
)

func IsValidStage(s Stage) bool {
	switch s {
	case StageLead, StageQualified, StageColdOutreach, StageFollowUp,
		StageDiscoveryScheduled, StageDiscoveryCompleted,
		StageOnboardingPortal, StageCampaignLive, StageFollowUpResell,
		StageCompleted, StageClosedLost:
		return true
	default:
		return false
	}
}

// Archived stages はパイプラインボードから除外される終端ステージ。
func (s Stage) Archived() bool {
	return s == StageCompleted || s == StageClosedLost
}

var stageNames = map[Stage]string{
	StageLead:               "Lead",
	StageQualified:          "Qualified",
	StageColdOutreach:       "Cold Outreach",
	StageFollowUp:           "Follow-Up",
	StageDiscoveryScheduled: "Discovery Scheduled",
	StageDiscoveryCompleted: "Discovery Completed",
	StageOnboardingPortal:   "Onboarding",
	StageCampaignLive:       "Live",
	StageFollowUpResell:     "Resell",
	StageCompleted:          "Completed",
	StageClosedLost:         "Closed Lost",
}

// DisplayName returns a human readable stage name.
func (s Stage) DisplayName() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return string(s)
}

// ========================================
// Errors
// ========================================

var (
	ErrInvalidID    = errors.New("deal: invalid id")
	ErrNotFound     = errors.New("deal: not found")
	ErrInvalidStage = errors.New("deal: invalid stage")
	ErrEmptyCompany = errors.New("deal: company name is empty")
)

// ========================================
// Entity (Firestore document: deals/{id})
// ========================================

// Deal は1案件分の営業情報を保持します。
type Deal struct {
	ID          string
	CompanyName string
	ContactName string
	Email       string
	Phone       string

	AssignedTo     string // rep id ("unassigned" until an admin assigns)
	Stage          Stage
	MRR            float64
	ContractLength int // months

	ClientPortalID string // link to ClientRecord once onboarding starts
	WebsiteQuoteID string // set when auto-created from a completed quote
	Notes          string
	Archived       bool

	LastUpdatedBy string
	CreatedAt     time.Time
	LastUpdated   time.Time
}

// NewDeal builds a deal at an initial stage.
func NewDeal(companyName string, stage Stage, now time.Time) (Deal, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return Deal{}, ErrEmptyCompany
	}
	if !IsValidStage(stage) {
		return Deal{}, ErrInvalidStage
	}
	return Deal{
		CompanyName: companyName,
		AssignedTo:  "unassigned",
		Stage:       stage,
		CreatedAt:   now.UTC(),
		LastUpdated: now.UTC(),
	}, nil
}

// TotalValue returns MRR * contract length (0 when either is unset).
func (d Deal) TotalValue() float64 {
	if d.MRR <= 0 || d.ContractLength <= 0 {
		return 0
	}
	return d.MRR * float64(d.ContractLength)
}

// ChangedBy returns the audit attribution for the last write.
func (d Deal) ChangedBy() string {
	if strings.TrimSpace(d.LastUpdatedBy) != "" {
		return d.LastUpdatedBy
	}
	return "system"
}
