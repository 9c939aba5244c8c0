package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/api/middleware"
	pkgerrors "github.com/taskhive/taskhive-backend/pkg/errors"
	"github.com/taskhive/taskhive-backend/pkg/metrics"
	"github.com/taskhive/taskhive-backend/pkg/pagination"
)

// actor identifies the admin extracted from the request context.
type actor struct {
	ID   uuid.UUID
	Role string
}

func actorFromRequest(r *http.Request) (actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor identity")
	}
	return actor{ID: id, Role: middleware.RoleFromContext(r.Context())}, nil
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func recordAction(m *metrics.Metrics, entity, action string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.RecordAction(entity, action, outcome)
}

// listEnvelope is the shared shape of the review queue responses.
type listEnvelope struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// encodeNextCursor returns the opaque token for the row after (createdAt, id).
// A short page means the queue is drained and no cursor is returned.
func encodeNextCursor(createdAt time.Time, id uuid.UUID, count, limit int) string {
	if count == 0 || count < pagination.Clamp(limit) {
		return ""
	}
	return pagination.Cursor{CreatedAt: createdAt, ID: id}.Encode()
}
