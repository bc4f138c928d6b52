package store

import (
	"context"
	"database/sql"

	"incidents-dashboard/core/incidents"
)

// SQLSource serves the incident collection from the app database. Column
// names follow the document field names so normalization stays shared.
type SQLSource struct {
	db *DB
}

func NewSQLSource(db *DB) *SQLSource {
	return &SQLSource{db: db}
}

func (s *SQLSource) FetchAll(ctx context.Context, collection string) ([]incidents.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT id, created_at, nombre_agente, punto, observacion, estado, prioridad, evidencia_data_url
		FROM incidents WHERE collection=?`), collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []incidents.RawRecord
	for rows.Next() {
		var id string
		var created sql.NullTime
		var agent, point, note, status, priority, evidence sql.NullString
		if err := rows.Scan(&id, &created, &agent, &point, &note, &status, &priority, &evidence); err != nil {
			return nil, err
		}
		data := map[string]any{}
		if created.Valid {
			data["createdAt"] = created.Time
		}
		putString(data, "nombreAgente", agent)
		putString(data, "punto", point)
		putString(data, "observacion", note)
		putString(data, "estado", status)
		putString(data, "prioridad", priority)
		putString(data, "evidenciaDataUrl", evidence)
		out = append(out, incidents.RawRecord{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func putString(data map[string]any, key string, v sql.NullString) {
	if v.Valid {
		data[key] = v.String
	}
}
