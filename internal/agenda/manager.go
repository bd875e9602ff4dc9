// Package agenda owns the agenda collection and drives every state
// transition. All other components return results; only the manager
// applies them.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guilherme-santos/agendahub"
	"github.com/guilherme-santos/agendahub/internal/authflow"
	"github.com/guilherme-santos/agendahub/internal/seed"
)

// Generator seeds appointments for agendas that have no cloud source.
type Generator func(owner agendahub.OwnerType, base time.Time, agendaID string) []*agendahub.Appointment

type Manager struct {
	output    io.Writer
	storage   agendahub.Storage
	providers agendahub.Mux
	flows     *authflow.Controller
	generate  Generator
	now       func() time.Time

	mu         sync.Mutex
	agendas    []*agendahub.Agenda
	colorIndex int
	inflight   map[string]bool
}

func NewManager(output io.Writer, storage agendahub.Storage, providers agendahub.Mux, flows *authflow.Controller) *Manager {
	if output == nil {
		output = os.Stdout
	}
	return &Manager{
		output:    output,
		storage:   storage,
		providers: providers,
		flows:     flows,
		generate:  seed.Appointments,
		now:       time.Now,
		inflight:  make(map[string]bool),
	}
}

// Load restores the agenda collection and the palette counter.
func (m *Manager) Load(ctx context.Context) error {
	agendas, err := m.storage.Agendas(ctx)
	if err != nil {
		return fmt.Errorf("loading agendas: %w", err)
	}
	colorIndex, err := m.storage.ColorIndex(ctx)
	if err != nil {
		return fmt.Errorf("loading color index: %w", err)
	}

	m.mu.Lock()
	m.agendas = agendas
	m.colorIndex = colorIndex
	m.mu.Unlock()
	return nil
}

// Agendas returns a snapshot of the collection.
func (m *Manager) Agendas() []*agendahub.Agenda {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*agendahub.Agenda, len(m.agendas))
	for i, a := range m.agendas {
		copied := *a
		out[i] = &copied
	}
	return out
}

// CreateAgenda adds an agenda to the collection. Manual and friend-link
// agendas are seeded by the generator; cloud agendas start empty in
// pending_auth, waiting for the caller to begin authentication.
func (m *Manager) CreateAgenda(ctx context.Context, name string, owner agendahub.OwnerType, source agendahub.Source, link string) (*agendahub.Agenda, error) {
	if name == "" {
		name = "My Agenda"
	}

	m.mu.Lock()
	agenda := &agendahub.Agenda{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerType: owner,
		Source:    source,
		Color:     m.nextColor(),
		IsVisible: true,
	}
	if owner == agendahub.OwnerFriend {
		agenda.PrivateLink = link
	}
	if source.OAuth() {
		agenda.AuthStatus = agendahub.AuthPending
		agenda.Appointments = []*agendahub.Appointment{}
	} else {
		agenda.Appointments = m.generate(owner, m.now(), agenda.ID)
	}
	m.agendas = append(m.agendas, agenda)
	m.mu.Unlock()

	m.save(ctx)

	copied := *agenda
	return &copied, nil
}

// nextColor hands out the next palette value. The counter only ever
// increases; the modulo happens inside ColorAt. Callers hold the lock.
func (m *Manager) nextColor() string {
	color := agendahub.ColorAt(m.colorIndex)
	m.colorIndex++
	return color
}

func (m *Manager) ToggleVisibility(ctx context.Context, agendaID string) error {
	m.mu.Lock()
	agenda := m.find(agendaID)
	if agenda == nil {
		m.mu.Unlock()
		return agendahub.ErrAgendaNotFound
	}
	agenda.IsVisible = !agenda.IsVisible
	m.mu.Unlock()

	m.save(ctx)
	return nil
}

func (m *Manager) RemoveAgenda(ctx context.Context, agendaID string) error {
	m.mu.Lock()
	found := false
	for i, a := range m.agendas {
		if a.ID == agendaID {
			m.agendas = append(m.agendas[:i], m.agendas[i+1:]...)
			found = true
			break
		}
	}
	m.mu.Unlock()

	if !found {
		return agendahub.ErrAgendaNotFound
	}
	m.save(ctx)
	return nil
}

// BeginAuthentication returns the authorization URL the user must visit
// for a cloud agenda.
func (m *Manager) BeginAuthentication(agendaID string) (string, error) {
	m.mu.Lock()
	agenda := m.find(agendaID)
	if agenda == nil {
		m.mu.Unlock()
		return "", agendahub.ErrAgendaNotFound
	}
	source := agenda.Source
	m.mu.Unlock()

	if !source.OAuth() {
		return "", agendahub.ErrNotOAuthSource
	}
	return m.flows.AuthorizationURL(source, agendaID)
}

// HandleCallback applies a returned authentication fragment to the
// collection. Absent callbacks are benign and report the agenda ID as
// empty; state mismatches and provider error redirects mark the pending
// agenda as errored. A successful parse moves the agenda to
// authenticated with tokenExpiry = now + expires_in (unset when the
// provider omitted it).
func (m *Manager) HandleCallback(ctx context.Context, fragment url.Values) (agendaID string, err error) {
	cb, err := m.flows.ParseCallback(fragment)
	if err != nil {
		if errors.Is(err, agendahub.ErrNoCallback) {
			if cbErr, ok := m.flows.ParseCallbackError(fragment); ok {
				m.markError(ctx, cbErr.AgendaID, cbErr.Err.Error())
				return cbErr.AgendaID, cbErr.Err
			}
			return "", nil
		}
		var mismatch *authflow.StateMismatchError
		if errors.As(err, &mismatch) {
			m.logf(nil, "authentication callback rejected: %v", err)
			m.markError(ctx, mismatch.AgendaID, err.Error())
			return mismatch.AgendaID, err
		}
		return "", err
	}

	m.mu.Lock()
	agenda := m.find(cb.AgendaID)
	if agenda == nil {
		m.mu.Unlock()
		return cb.AgendaID, agendahub.ErrAgendaNotFound
	}
	agenda.AccessToken = cb.AccessToken
	if cb.ExpiresIn > 0 {
		agenda.TokenExpiry = m.now().Add(time.Duration(cb.ExpiresIn) * time.Second)
	} else {
		agenda.TokenExpiry = time.Time{}
	}
	agenda.AuthStatus = agendahub.AuthAuthenticated
	agenda.AuthErr = ""
	m.mu.Unlock()

	m.save(ctx)
	return cb.AgendaID, nil
}

// Synchronize refreshes one cloud agenda. The expiry guard runs before
// any network call: a missing or expired token moves the agenda to
// token_expired with its appointments cleared. A fetch failure moves it
// to error, keeping the token so the user can retry without
// re-authenticating. All provider failures are absorbed into agenda
// state; only caller mistakes (unknown agenda, overlapping call) come
// back as errors.
func (m *Manager) Synchronize(ctx context.Context, agendaID string) error {
	m.mu.Lock()
	agenda := m.find(agendaID)
	if agenda == nil {
		m.mu.Unlock()
		return agendahub.ErrAgendaNotFound
	}
	if !agenda.Source.OAuth() {
		// Generator-fed agendas have nothing to synchronize.
		m.mu.Unlock()
		return nil
	}
	if m.inflight[agendaID] {
		m.mu.Unlock()
		return agendahub.ErrSyncInProgress
	}

	if !agenda.TokenValid(m.now()) {
		agenda.AuthStatus = agendahub.AuthTokenExpired
		agenda.AuthErr = "token expired, re-authenticate to continue"
		agenda.Appointments = []*agendahub.Appointment{}
		name := agenda.String()
		m.mu.Unlock()

		m.save(ctx)
		m.logf(nil, "%s: token expired, skipping fetch", name)
		return nil
	}

	source := agenda.Source
	token := agenda.AccessToken
	m.inflight[agendaID] = true
	m.mu.Unlock()

	appts, fetchErr := m.fetch(ctx, source, token, agendaID)

	m.mu.Lock()
	delete(m.inflight, agendaID)
	agenda = m.find(agendaID)
	if agenda == nil {
		// Removed while the fetch was in flight; drop the result.
		m.mu.Unlock()
		return nil
	}
	if fetchErr != nil {
		agenda.AuthStatus = agendahub.AuthError
		agenda.AuthErr = fetchErr.Error()
		agenda.Appointments = []*agendahub.Appointment{}
	} else {
		agenda.Appointments = appts
		agenda.AuthStatus = agendahub.AuthAuthenticated
		agenda.AuthErr = ""
	}
	m.mu.Unlock()

	m.save(ctx)
	if fetchErr != nil {
		m.logf(nil, "synchronizing %s: %v", agendaID, fetchErr)
	}
	return nil
}

func (m *Manager) fetch(ctx context.Context, source agendahub.Source, token, agendaID string) ([]*agendahub.Appointment, error) {
	provider, err := m.providers.Get(source)
	if err != nil {
		return nil, err
	}
	return provider.Events(ctx, token, agendaID)
}

// SynchronizeAll refreshes every cloud agenda that has passed
// authentication, one at a time. Per-agenda failures are absorbed into
// agenda state as usual.
func (m *Manager) SynchronizeAll(ctx context.Context) error {
	for _, a := range m.Agendas() {
		if !a.Source.OAuth() || a.AuthStatus == agendahub.AuthPending {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Synchronize(ctx, a.ID); err != nil && !errors.Is(err, agendahub.ErrSyncInProgress) {
			return err
		}
	}
	return nil
}

// AggregateVisible returns every appointment of every visible agenda,
// each annotated with its owning agenda's name and color. Recomputed on
// each call, never cached.
func (m *Manager) AggregateVisible() []*agendahub.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*agendahub.Appointment{}
	for _, agenda := range m.agendas {
		if !agenda.IsVisible {
			continue
		}
		for _, appt := range agenda.Appointments {
			copied := *appt
			copied.AgendaID = agenda.ID
			copied.AgendaName = agenda.Name
			copied.AgendaColor = agenda.Color
			out = append(out, &copied)
		}
	}
	return out
}

func (m *Manager) markError(ctx context.Context, agendaID, message string) {
	m.mu.Lock()
	agenda := m.find(agendaID)
	if agenda != nil {
		agenda.AuthStatus = agendahub.AuthError
		agenda.AuthErr = message
	}
	m.mu.Unlock()

	if agenda != nil {
		m.save(ctx)
	}
}

// find returns the agenda with the given id; callers hold the lock.
func (m *Manager) find(agendaID string) *agendahub.Agenda {
	for _, a := range m.agendas {
		if a.ID == agendaID {
			return a
		}
	}
	return nil
}

// save persists the whole collection and the palette counter after a
// mutation batch. The snapshot is deep-copied under the lock: storage
// reads agenda fields after it is released, and a concurrent Synchronize
// mutates the live structs. Storage failures are logged, not propagated:
// the in-memory collection stays authoritative for the session.
func (m *Manager) save(ctx context.Context) {
	m.mu.Lock()
	agendas := make([]*agendahub.Agenda, len(m.agendas))
	for i, a := range m.agendas {
		copied := *a
		agendas[i] = &copied
	}
	colorIndex := m.colorIndex
	m.mu.Unlock()

	if err := m.storage.SaveAgendas(ctx, agendas); err != nil {
		m.logf(nil, "saving agendas: %v", err)
		return
	}
	if err := m.storage.SaveColorIndex(ctx, colorIndex); err != nil {
		m.logf(nil, "saving color index: %v", err)
	}
}

func (m *Manager) logf(agenda *agendahub.Agenda, format string, a ...any) {
	agendahub.Logf(m.output, "", agenda, format, a...)
}
