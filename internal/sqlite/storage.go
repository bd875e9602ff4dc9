package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/guilherme-santos/agendahub"
)

const DriverName = "sqlite3"

const colorIndexKey = "color_index"

// Storage persists the agenda collection and the palette counter. Saves
// replace the whole collection inside one transaction, matching the
// copy-on-write semantics of the in-memory side.
type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sql.DB) *Storage {
	s := &Storage{
		db: sqlx.NewDb(db, DriverName),
	}
	err := s.RunMigrations()
	if err != nil {
		panic(fmt.Sprintf("sqlite: running migrations: %v", err))
	}
	return s
}

func (s Storage) Agendas(ctx context.Context) ([]*agendahub.Agenda, error) {
	var rows []Agenda
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, owner_type, source, color, is_visible, private_link,
			access_token, token_expiry_ms, auth_status, auth_error
		FROM agendas
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}

	res := make([]*agendahub.Agenda, len(rows))
	for i, row := range rows {
		agenda := row.Convert()

		var appts []Appointment
		err := s.db.SelectContext(ctx, &appts, `
			SELECT id, title, description, starts_at_ms, ends_at_ms
			FROM appointments
			WHERE agenda_id = ?
			ORDER BY starts_at_ms
		`, agenda.ID)
		if err != nil {
			return nil, err
		}
		agenda.Appointments = make([]*agendahub.Appointment, len(appts))
		for j, appt := range appts {
			agenda.Appointments[j] = appt.Convert(agenda.ID)
		}
		res[i] = agenda
	}
	return res, nil
}

func (s Storage) SaveAgendas(ctx context.Context, agendas []*agendahub.Agenda) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM appointments`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM agendas`); err != nil {
		return err
	}

	for position, agenda := range agendas {
		row := NewAgendaRow(agenda, position)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO agendas (id, name, owner_type, source, color, is_visible,
				private_link, access_token, token_expiry_ms, auth_status, auth_error, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, row.ID, row.Name, row.OwnerType, row.Source, row.Color, row.IsVisible,
			row.PrivateLink, row.AccessToken, row.TokenExpiryMs, row.AuthStatus, row.AuthError, row.Position)
		if err != nil {
			return fmt.Errorf("agenda %s: %v", agenda.ID, err)
		}

		for _, appt := range agenda.Appointments {
			row := NewAppointmentRow(appt)
			_, err := tx.ExecContext(ctx, `
				INSERT INTO appointments (agenda_id, id, title, description, starts_at_ms, ends_at_ms)
				VALUES (?, ?, ?, ?, ?, ?)
			`, agenda.ID, row.ID, row.Title, row.Description, row.StartsAtMs, row.EndsAtMs)
			if err != nil {
				return fmt.Errorf("appointment %s/%s: %v", agenda.ID, appt.ID, err)
			}
		}
	}
	return tx.Commit()
}

func (s Storage) ColorIndex(ctx context.Context) (int, error) {
	var index int
	err := s.db.GetContext(ctx, &index, `
		SELECT value FROM app_state WHERE key = ?
	`, colorIndexKey)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return index, err
}

func (s Storage) SaveColorIndex(ctx context.Context, index int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=?;
	`, colorIndexKey, index, index)
	return err
}
