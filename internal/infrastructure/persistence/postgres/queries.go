package postgres

const (
	sqlCreateMigrations = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	sqlMigrationApplied = `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`

	sqlRecordMigration = `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`

	sqlFindProcesses = `
		SELECT p.id, p.name, COALESCE(p.description, ''), p.status,
			p.due_date, p.created_at, p.updated_at,
			rv.id, rv.name, rv.email,
			cr.id, cr.name, cr.email
		FROM processes p
		LEFT JOIN users rv ON rv.id = p.assigned_reviewer_id
		LEFT JOIN users cr ON cr.id = p.created_by
		WHERE p.id = ANY($1)
		ORDER BY p.created_at ASC, p.id ASC`

	sqlFindIncidents = `
		SELECT i.id, i.process_id, p.name, i.description, i.status, i.evidence,
			i.approved_at, i.resolved_at, i.created_at, i.updated_at,
			cr.id, cr.name, cr.email,
			asg.id, asg.name, asg.email
		FROM incidents i
		JOIN processes p ON p.id = i.process_id
		LEFT JOIN users cr ON cr.id = i.created_by
		LEFT JOIN users asg ON asg.id = i.assigned_to
		WHERE i.process_id = ANY($1)
		ORDER BY i.created_at DESC, i.id DESC`

	sqlInsertReport = `
		INSERT INTO reports (id, title, filename, process_ids, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	sqlGetReport = `
		SELECT id, title, filename, process_ids, created_by, created_at
		FROM reports
		WHERE id = $1`

	sqlListReports = `
		SELECT id, title, filename, process_ids, created_by, created_at
		FROM reports
		WHERE ($1 = '' OR created_by = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
)
