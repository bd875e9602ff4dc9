package sqlite

import (
	"time"

	"github.com/guilherme-santos/agendahub"
)

// Instants are stored as unix milliseconds so start/end/expiry round-trip
// as instants rather than formatted strings. Zero means unset.

type Agenda struct {
	ID            string
	Name          string
	OwnerType     string `db:"owner_type"`
	Source        string
	Color         string
	IsVisible     bool   `db:"is_visible"`
	PrivateLink   string `db:"private_link"`
	AccessToken   string `db:"access_token"`
	TokenExpiryMs int64  `db:"token_expiry_ms"`
	AuthStatus    string `db:"auth_status"`
	AuthError     string `db:"auth_error"`
	Position      int    `db:"-"`
}

func NewAgendaRow(a *agendahub.Agenda, position int) Agenda {
	var expiry int64
	if !a.TokenExpiry.IsZero() {
		expiry = a.TokenExpiry.UnixMilli()
	}
	return Agenda{
		ID:            a.ID,
		Name:          a.Name,
		OwnerType:     a.OwnerType.String(),
		Source:        a.Source.String(),
		Color:         a.Color,
		IsVisible:     a.IsVisible,
		PrivateLink:   a.PrivateLink,
		AccessToken:   a.AccessToken,
		TokenExpiryMs: expiry,
		AuthStatus:    a.AuthStatus.String(),
		AuthError:     a.AuthErr,
		Position:      position,
	}
}

func (a Agenda) Convert() *agendahub.Agenda {
	agenda := &agendahub.Agenda{
		ID:          a.ID,
		Name:        a.Name,
		OwnerType:   agendahub.OwnerType(a.OwnerType),
		Source:      agendahub.Source(a.Source),
		Color:       a.Color,
		IsVisible:   a.IsVisible,
		PrivateLink: a.PrivateLink,
		AccessToken: a.AccessToken,
		AuthStatus:  agendahub.AuthStatus(a.AuthStatus),
		AuthErr:     a.AuthError,
	}
	if a.TokenExpiryMs != 0 {
		agenda.TokenExpiry = time.UnixMilli(a.TokenExpiryMs)
	}
	return agenda
}

type Appointment struct {
	ID          string
	Title       string
	Description string
	StartsAtMs  int64 `db:"starts_at_ms"`
	EndsAtMs    int64 `db:"ends_at_ms"`
}

func NewAppointmentRow(a *agendahub.Appointment) Appointment {
	return Appointment{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		StartsAtMs:  a.StartsAt.UnixMilli(),
		EndsAtMs:    a.EndsAt.UnixMilli(),
	}
}

func (a Appointment) Convert(agendaID string) *agendahub.Appointment {
	return &agendahub.Appointment{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		StartsAt:    time.UnixMilli(a.StartsAtMs),
		EndsAt:      time.UnixMilli(a.EndsAtMs),
		AgendaID:    agendaID,
	}
}
