package repository

import (
	"strings"
	"time"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
)

// ContactModel is the persistence model for the emergency_contacts table.
type ContactModel struct {
	ID            string  `gorm:"type:uuid;primaryKey"`
	UserID        string  `gorm:"type:varchar(64);not null;index"`
	ContactUserID *string `gorm:"type:varchar(64)"`
	Name          string  `gorm:"type:varchar(255);not null"`
	Phone         string  `gorm:"type:varchar(32);not null"`
	Email         *string `gorm:"type:varchar(255)"`
	IsPrimary     bool    `gorm:"not null;default:false"`
	CreatedAt     time.Time
}

func (ContactModel) TableName() string {
	return "emergency_contacts"
}

// EmergencyCallModel is the persistence model for the emergency_calls table.
type EmergencyCallModel struct {
	ID             string                 `gorm:"type:uuid;primaryKey"`
	UserID         string                 `gorm:"type:varchar(64);not null"`
	RecipientID    *string                `gorm:"type:varchar(64)"`
	Transcript     string                 `gorm:"type:text;not null"`
	Urgency        domain.Urgency         `gorm:"type:varchar(10);not null"`
	Sentiment      domain.Sentiment       `gorm:"type:varchar(10);not null"`
	SentimentScore float64                `gorm:"not null;default:0"`
	EmotionalTone  string                 `gorm:"type:varchar(64)"`
	IncidentType   *string                `gorm:"type:varchar(64)"`
	Location       *string                `gorm:"type:text"`
	Keywords       string                 `gorm:"type:text"`
	Status         domain.CallStatus      `gorm:"type:varchar(20);not null"`
	AlertSummary   *domain.DispatchResult `gorm:"type:jsonb;serializer:json"`
	AlertClaimedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (EmergencyCallModel) TableName() string {
	return "emergency_calls"
}

// UserRoleModel is the current role of a user.
type UserRoleModel struct {
	UserID    string      `gorm:"type:varchar(64);primaryKey"`
	Role      domain.Role `gorm:"type:varchar(10);not null"`
	UpdatedAt time.Time
}

func (UserRoleModel) TableName() string {
	return "user_roles"
}

// RoleGrantModel is the append-only audit trail of role changes.
type RoleGrantModel struct {
	ID        string      `gorm:"type:uuid;primaryKey"`
	ActorID   string      `gorm:"type:varchar(64);not null"`
	TargetID  string      `gorm:"type:varchar(64);not null;index"`
	Role      domain.Role `gorm:"type:varchar(10);not null"`
	CreatedAt time.Time
}

func (RoleGrantModel) TableName() string {
	return "role_grants"
}

// DeliveryAttemptModel is the persistence model for alert_deliveries.
type DeliveryAttemptModel struct {
	ID                string         `gorm:"type:uuid;primaryKey"`
	CallID            string         `gorm:"type:uuid;not null"`
	ContactID         string         `gorm:"type:uuid;not null"`
	Channel           domain.Channel `gorm:"type:varchar(10);not null"`
	Success           bool           `gorm:"not null"`
	ProviderMessageID *string        `gorm:"type:varchar(255)"`
	StatusCode        *int           `gorm:"type:int"`
	Error             *string        `gorm:"type:text"`
	CreatedAt         time.Time
}

func (DeliveryAttemptModel) TableName() string {
	return "alert_deliveries"
}

func contactModelFromDomain(c *domain.Contact) *ContactModel {
	if c == nil {
		return nil
	}

	return &ContactModel{
		ID:            c.ID,
		UserID:        c.UserID,
		ContactUserID: c.ContactUserID,
		Name:          c.Name,
		Phone:         c.Phone,
		Email:         c.Email,
		IsPrimary:     c.IsPrimary,
		CreatedAt:     c.CreatedAt,
	}
}

func contactModelToDomain(m *ContactModel) *domain.Contact {
	if m == nil {
		return nil
	}

	return &domain.Contact{
		ID:            m.ID,
		UserID:        m.UserID,
		ContactUserID: m.ContactUserID,
		Name:          m.Name,
		Phone:         m.Phone,
		Email:         m.Email,
		IsPrimary:     m.IsPrimary,
		CreatedAt:     m.CreatedAt,
	}
}

func callModelFromDomain(c *domain.EmergencyCall) *EmergencyCallModel {
	if c == nil {
		return nil
	}

	return &EmergencyCallModel{
		ID:             c.ID,
		UserID:         c.UserID,
		RecipientID:    c.RecipientID,
		Transcript:     c.Transcript,
		Urgency:        c.Urgency,
		Sentiment:      c.Sentiment,
		SentimentScore: c.SentimentScore,
		EmotionalTone:  c.EmotionalTone,
		IncidentType:   c.IncidentType,
		Location:       c.Location,
		Keywords:       strings.Join(c.Keywords, ","),
		Status:         c.Status,
		AlertSummary:   c.AlertSummary,
		AlertClaimedAt: c.AlertClaimedAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func callModelToDomain(m *EmergencyCallModel) *domain.EmergencyCall {
	if m == nil {
		return nil
	}

	return &domain.EmergencyCall{
		ID:             m.ID,
		UserID:         m.UserID,
		RecipientID:    m.RecipientID,
		Transcript:     m.Transcript,
		Urgency:        m.Urgency,
		Sentiment:      m.Sentiment,
		SentimentScore: m.SentimentScore,
		EmotionalTone:  m.EmotionalTone,
		IncidentType:   m.IncidentType,
		Location:       m.Location,
		Keywords:       domain.ParseKeywords(m.Keywords),
		Status:         m.Status,
		AlertSummary:   m.AlertSummary,
		AlertClaimedAt: m.AlertClaimedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func roleGrantModelFromDomain(g *domain.RoleGrant) *RoleGrantModel {
	if g == nil {
		return nil
	}

	return &RoleGrantModel{
		ID:        g.ID,
		ActorID:   g.ActorID,
		TargetID:  g.TargetID,
		Role:      g.Role,
		CreatedAt: g.CreatedAt,
	}
}

func roleGrantModelToDomain(m *RoleGrantModel) *domain.RoleGrant {
	if m == nil {
		return nil
	}

	return &domain.RoleGrant{
		ID:        m.ID,
		ActorID:   m.ActorID,
		TargetID:  m.TargetID,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}
}

func deliveryModelFromDomain(a *domain.DeliveryAttempt) *DeliveryAttemptModel {
	if a == nil {
		return nil
	}

	return &DeliveryAttemptModel{
		ID:                a.ID,
		CallID:            a.CallID,
		ContactID:         a.ContactID,
		Channel:           a.Channel,
		Success:           a.Success,
		ProviderMessageID: a.ProviderMessageID,
		StatusCode:        a.StatusCode,
		Error:             a.Error,
		CreatedAt:         a.CreatedAt,
	}
}

func deliveryModelToDomain(m *DeliveryAttemptModel) *domain.DeliveryAttempt {
	if m == nil {
		return nil
	}

	return &domain.DeliveryAttempt{
		ID:                m.ID,
		CallID:            m.CallID,
		ContactID:         m.ContactID,
		Channel:           m.Channel,
		Success:           m.Success,
		ProviderMessageID: m.ProviderMessageID,
		StatusCode:        m.StatusCode,
		Error:             m.Error,
		CreatedAt:         m.CreatedAt,
	}
}
