package sqlite

func (s Storage) RunMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS agendas (
		id VARCHAR NOT NULL PRIMARY KEY,
		name VARCHAR NOT NULL,
		owner_type VARCHAR NOT NULL,
		source VARCHAR NOT NULL,
		color VARCHAR NOT NULL,
		is_visible INTEGER NOT NULL DEFAULT 1,
		private_link VARCHAR NOT NULL DEFAULT "",
		access_token VARCHAR NOT NULL DEFAULT "",
		token_expiry_ms INTEGER NOT NULL DEFAULT 0,
		auth_status VARCHAR NOT NULL DEFAULT "",
		auth_error VARCHAR NOT NULL DEFAULT "",
		position INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		agenda_id VARCHAR NOT NULL,
		id VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		description VARCHAR NOT NULL DEFAULT "",
		starts_at_ms INTEGER NOT NULL,
		ends_at_ms INTEGER NOT NULL,
		PRIMARY KEY (agenda_id, id),
		FOREIGN KEY (agenda_id) REFERENCES agendas (id)
	)`,
	`CREATE TABLE IF NOT EXISTS app_state (
		key VARCHAR NOT NULL PRIMARY KEY,
		value INTEGER NOT NULL
	)`,
}
