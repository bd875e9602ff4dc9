package agendahub

import (
	"context"
	"fmt"
	"time"
)

// OwnerType says whose events an agenda holds.
type OwnerType string

func (t OwnerType) String() string {
	return string(t)
}

var (
	OwnerUser   OwnerType = "user"
	OwnerFriend OwnerType = "friend"
)

// Source identifies where an agenda's appointments come from.
type Source string

func (s Source) String() string {
	return string(s)
}

// OAuth reports whether the source is backed by a cloud provider and
// therefore goes through the authentication state machine.
func (s Source) OAuth() bool {
	return s == SourceGoogle || s == SourceMicrosoft
}

var (
	SourceManual     Source = "manual"
	SourceFriendLink Source = "friend_link"
	SourceGoogle     Source = "google"
	SourceMicrosoft  Source = "microsoft"
)

// AuthStatus is the authentication state of an OAuth-backed agenda.
// Manual and friend agendas never carry one.
type AuthStatus string

func (s AuthStatus) String() string {
	return string(s)
}

var (
	AuthPending       AuthStatus = "pending_auth"
	AuthInProgress    AuthStatus = "authenticating"
	AuthAuthenticated AuthStatus = "authenticated"
	AuthTokenExpired  AuthStatus = "token_expired"
	AuthError         AuthStatus = "error"
)

// Appointment is a single calendar event normalized into canonical shape.
// AgendaName and AgendaColor are denormalized for display and recomputed
// on every aggregation, never mutated independently.
type Appointment struct {
	ID          string
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	AgendaID    string
	AgendaName  string
	AgendaColor string
}

// Agenda is a named source of calendar events. The token fields are set
// only when Source.OAuth() is true.
type Agenda struct {
	ID           string
	Name         string
	OwnerType    OwnerType
	Source       Source
	Color        string
	IsVisible    bool
	Appointments []*Appointment

	// PrivateLink is set for friend agendas created from a shared link.
	PrivateLink string

	AccessToken string
	TokenExpiry time.Time
	AuthStatus  AuthStatus
	AuthErr     string
}

func (a Agenda) String() string {
	return fmt.Sprintf("%s/%s", a.Source, a.Name)
}

// TokenValid reports whether the agenda holds a token that has not passed
// its expiry instant. An unset expiry is treated as non-expiring.
func (a Agenda) TokenValid(now time.Time) bool {
	if a.AccessToken == "" {
		return false
	}
	if a.TokenExpiry.IsZero() {
		return true
	}
	return now.Before(a.TokenExpiry)
}

// Colors is the fixed palette agendas rotate through. The index counter
// lives with the agenda collection and only cycles modulo the palette size
// to pick a value; the counter itself is never reset.
var Colors = []string{
	"#EF4444", // red
	"#F97316", // orange
	"#EAB308", // yellow
	"#22C55E", // green
	"#3B82F6", // blue
	"#8B5CF6", // violet
	"#EC4899", // pink
	"#14B8A6", // teal
	"#F59E0B", // amber
	"#6366F1", // indigo
}

// ColorAt returns the palette value for a monotonically increasing index.
func ColorAt(index int) string {
	if index < 0 {
		index = -index
	}
	return Colors[index%len(Colors)]
}

// Provider fetches the current events of one cloud calendar. Each call is
// independent: no retry, no pagination beyond the single page.
type Provider interface {
	Events(ctx context.Context, accessToken, agendaID string) ([]*Appointment, error)
}

// Mux resolves the provider responsible for a source.
type Mux interface {
	Get(source Source) (Provider, error)
}

// Storage persists the full agenda collection and the palette counter.
// Start/end/expiry instants must survive a save/load cycle as instants.
type Storage interface {
	Agendas(ctx context.Context) ([]*Agenda, error)
	SaveAgendas(ctx context.Context, agendas []*Agenda) error
	ColorIndex(ctx context.Context) (int, error)
	SaveColorIndex(ctx context.Context, index int) error
}
