package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/garyjia/process-reports/internal/domain/entity"
)

// inClause returns "?, ?, ?" for n values and the matching argument list.
func inClause(values []string) (string, []interface{}) {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", "), args
}

// userSummary builds a summary from LEFT JOINed user columns, nil when absent.
func userSummary(id, name, email sql.NullString) *entity.UserSummary {
	if !id.Valid {
		return nil
	}
	return &entity.UserSummary{
		ID:    id.String,
		Name:  name.String,
		Email: email.String,
	}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
