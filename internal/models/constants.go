package models

// TemplateStatus константы статусов шаблонов.
// Переходы между статусами не регламентированы: любой статус можно
// установить из любого другого через частичное обновление.
const (
	TemplateStatusDraft    = "draft"
	TemplateStatusActive   = "active"
	TemplateStatusArchived = "archived"
)

// AccessLevel константы уровней доступа к шаблону.
const (
	AccessLevelPersonal  = "personal"
	AccessLevelTeam      = "team"
	AccessLevelWorkspace = "workspace"
)

// DefaultTemplateLanguage — язык шаблона по умолчанию.
const DefaultTemplateLanguage = "en"

// ContactStatus константы статусов контактов.
const (
	ContactStatusActive       = "active"
	ContactStatusUnsubscribed = "unsubscribed"
	ContactStatusBounced      = "bounced"
)

// SequenceStatus константы статусов цепочек.
const (
	SequenceStatusDraft    = "draft"
	SequenceStatusActive   = "active"
	SequenceStatusPaused   = "paused"
	SequenceStatusArchived = "archived"
)

// EnrollmentStatus константы статусов участия контакта в цепочке.
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusPaused    = "paused"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusExited    = "exited"
)

// DealStage константы стадий сделки.
const (
	DealStageLead        = "lead"
	DealStageQualified   = "qualified"
	DealStageProposal    = "proposal"
	DealStageNegotiation = "negotiation"
	DealStageWon         = "won"
	DealStageLost        = "lost"
)

// UserRole константы ролей пользователей воркспейса.
const (
	UserRoleOwner  = "owner"
	UserRoleMember = "member"
)

// ValidTemplateStatuses список валидных статусов шаблонов.
var ValidTemplateStatuses = map[string]struct{}{
	TemplateStatusDraft:    {},
	TemplateStatusActive:   {},
	TemplateStatusArchived: {},
}

// ValidAccessLevels список валидных уровней доступа.
var ValidAccessLevels = map[string]struct{}{
	AccessLevelPersonal:  {},
	AccessLevelTeam:      {},
	AccessLevelWorkspace: {},
}

// ValidContactStatuses список валидных статусов контактов.
var ValidContactStatuses = map[string]struct{}{
	ContactStatusActive:       {},
	ContactStatusUnsubscribed: {},
	ContactStatusBounced:      {},
}

// ValidSequenceStatuses список валидных статусов цепочек.
var ValidSequenceStatuses = map[string]struct{}{
	SequenceStatusDraft:    {},
	SequenceStatusActive:   {},
	SequenceStatusPaused:   {},
	SequenceStatusArchived: {},
}

// ValidEnrollmentStatuses список валидных статусов участия.
var ValidEnrollmentStatuses = map[string]struct{}{
	EnrollmentStatusActive:    {},
	EnrollmentStatusPaused:    {},
	EnrollmentStatusCompleted: {},
	EnrollmentStatusExited:    {},
}

// ValidDealStages список валидных стадий сделки.
var ValidDealStages = map[string]struct{}{
	DealStageLead:        {},
	DealStageQualified:   {},
	DealStageProposal:    {},
	DealStageNegotiation: {},
	DealStageWon:         {},
	DealStageLost:        {},
}

// DealStageOrder — порядок стадий воронки для сводок.
var DealStageOrder = []string{
	DealStageLead,
	DealStageQualified,
	DealStageProposal,
	DealStageNegotiation,
	DealStageWon,
	DealStageLost,
}
