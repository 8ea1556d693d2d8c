// Package domain defines the core types for the contract engine.
package domain

import "time"

// Kind identifies a family of contracts. All kinds share the Mission shape;
// the differences live in the policy table.
type Kind string

const (
	KindTrade      Kind = "trade"
	KindEscort     Kind = "escort"
	KindTaxi       Kind = "taxi"
	KindDiplomatic Kind = "diplomatic"
	KindStrike     Kind = "strike"
)

// AllKinds returns every contract kind in a stable order.
func AllKinds() []Kind {
	return []Kind{KindTrade, KindEscort, KindTaxi, KindDiplomatic, KindStrike}
}

// RiskTier is the coarse danger category of a contract.
type RiskTier string

const (
	TierLow      RiskTier = "low"
	TierMedium   RiskTier = "medium"
	TierHigh     RiskTier = "high"
	TierCritical RiskTier = "critical"
)

// MissionState represents the lifecycle state of a mission.
type MissionState string

const (
	MissionAvailable MissionState = "available"
	MissionActive    MissionState = "active"
	MissionCompleted MissionState = "completed"
)

// ResourceStatus represents the availability of a ship.
type ResourceStatus string

const (
	ResourceOperational ResourceStatus = "operational"
	ResourceAssigned    ResourceStatus = "assigned"
	ResourceNeedsRepair ResourceStatus = "needs_repair"
)

// Location is a node of the route graph.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Lane is an undirected connection between two locations.
type Lane struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Resource is an exclusively assignable ship.
type Resource struct {
	ResourceID    string         `json:"resource_id"`
	Name          string         `json:"name"`
	Capability    int            `json:"capability"`
	Status        ResourceStatus `json:"status"`
	CurrentHealth int            `json:"current_health"`
	MaxHealth     int            `json:"max_health"`
}

// MissionTemplate is an immutable catalog entry.
type MissionTemplate struct {
	TemplateID         string   `json:"template_id"`
	Kind               Kind     `json:"kind"`
	Title              string   `json:"title"`
	RiskTier           RiskTier `json:"risk_tier"`
	BasePayout         int64    `json:"base_payout"`
	DurationSeconds    int64    `json:"duration_seconds"`
	RequiredCapability int      `json:"required_capability,omitempty"`
}

// Interruption is an outstanding delay recorded against an active mission.
type Interruption struct {
	InterruptionID  string    `json:"interruption_id"`
	MissionID       string    `json:"mission_id"`
	Description     string    `json:"description"`
	PenaltySeconds  int64     `json:"penalty_seconds"`
	ProgressBefore  float64   `json:"progress_before"`
	ProgressAfter   float64   `json:"progress_after"`
	NavigatorAboard bool      `json:"navigator_aboard"`
	RaisedAt        time.Time `json:"raised_at"`
}

// Mission is a contract instance generated from a template.
type Mission struct {
	ID                     string        `json:"id"`
	TemplateID             string        `json:"template_id"`
	Kind                   Kind          `json:"kind"`
	Title                  string        `json:"title"`
	Origin                 string        `json:"origin"`
	Destination            string        `json:"destination"`
	RiskTier               RiskTier      `json:"risk_tier"`
	Payout                 int64         `json:"payout"`
	DurationSeconds        int64         `json:"duration_seconds"`
	NominalDurationSeconds int64         `json:"nominal_duration_seconds"`
	RequiredCapability     int           `json:"required_capability,omitempty"`
	State                  MissionState  `json:"state"`
	CreatedAt              time.Time     `json:"created_at"`
	StartedAt              time.Time     `json:"started_at,omitzero"`
	CompletedAt            time.Time     `json:"completed_at,omitzero"`
	ProgressPercent        float64       `json:"progress_percent"`
	AssignedResourceID     string        `json:"assigned_resource_id,omitempty"`
	PendingInterruption    *Interruption `json:"pending_interruption,omitempty"`
}

// Reward is the outcome of a completed mission, applied by the player aggregate.
type Reward struct {
	MissionID            string  `json:"mission_id"`
	Kind                 Kind    `json:"kind"`
	CreditsAwarded       int64   `json:"credits_awarded"`
	ReputationDelta      int     `json:"reputation_delta"`
	Late                 bool    `json:"late"`
	ElapsedSeconds       float64 `json:"elapsed_seconds"`
	NarrativeDescription string  `json:"narrative_description"`
}

// Completion pairs a finished mission with its reward and the released ship.
type Completion struct {
	Mission    Mission `json:"mission"`
	Reward     Reward  `json:"reward"`
	ResourceID string  `json:"resource_id"`
}

// NotificationType categorizes engine notifications.
type NotificationType string

const (
	NotifyGenerated   NotificationType = "mission_generated"
	NotifyAccepted    NotificationType = "mission_accepted"
	NotifyInterrupted NotificationType = "mission_interrupted"
	NotifyResolved    NotificationType = "interruption_resolved"
	NotifyCompleted   NotificationType = "mission_completed"
)

// Notification is a human-readable engine event for the host's notification sink.
type Notification struct {
	Type      NotificationType `json:"type"`
	MissionID string           `json:"mission_id,omitempty"`
	Kind      Kind             `json:"kind,omitempty"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// MissionEvent is a persisted notification in the mission event journal.
type MissionEvent struct {
	ID          int64  `json:"id"`
	SeqNo       int64  `json:"seq_no"`
	MissionID   string `json:"mission_id"`
	EventType   string `json:"event_type"`
	Message     string `json:"message"`
	PayloadJSON string `json:"payload_json"`
	CreatedAt   int64  `json:"created_at"`
}

// AuditRecord logs operational events such as repairs and invariant checks.
type AuditRecord struct {
	ID         string `json:"id"`
	SubjectID  string `json:"subject_id"`
	Category   string `json:"category"`
	Actor      string `json:"actor"`
	Action     string `json:"action"`
	DetailJSON string `json:"detail_json"`
	Severity   string `json:"severity"`
	CreatedAt  int64  `json:"created_at"`
}

// Player is the host-side aggregate that receives rewards.
type Player struct {
	PlayerID      string `json:"player_id"`
	Credits       int64  `json:"credits"`
	Reputation    int    `json:"reputation"`
	Completed     int    `json:"completed"`
	UpdatedAtUnix int64  `json:"updated_at_unix"`
}

// LedgerEntry is one line of the player's append-only event log.
type LedgerEntry struct {
	ID              int64  `json:"id"`
	PlayerID        string `json:"player_id"`
	MissionID       string `json:"mission_id"`
	CreditsDelta    int64  `json:"credits_delta"`
	ReputationDelta int    `json:"reputation_delta"`
	Description     string `json:"description"`
	CreatedAt       int64  `json:"created_at"`
}

// Snapshot is a point-in-time copy of every mission and ship, used to
// checkpoint the engine and restore it after a restart.
type Snapshot struct {
	Missions  []Mission  `json:"missions"`
	Resources []Resource `json:"resources"`
	TakenAt   time.Time  `json:"taken_at"`
}
