package admin

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/api/responses"
	"github.com/taskhive/taskhive-backend/api/validators"
	"github.com/taskhive/taskhive-backend/internal/approvals"
	"github.com/taskhive/taskhive-backend/pkg/enums"
	pkgerrors "github.com/taskhive/taskhive-backend/pkg/errors"
	"github.com/taskhive/taskhive-backend/pkg/logger"
	"github.com/taskhive/taskhive-backend/pkg/metrics"
)

type bulkRequest struct {
	Entity string      `json:"entity" validate:"required"`
	Action string      `json:"action" validate:"required"`
	IDs    []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
	Reason string      `json:"reason" validate:"omitempty,max=500"`
}

// Bulk applies one action to a batch of ids and reports per-item outcomes.
func Bulk(svc approvals.Service, m *metrics.Metrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body bulkRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entity, err := enums.ParseBulkEntity(body.Entity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entity"))
			return
		}
		action, err := enums.ParseBulkAction(body.Action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action"))
			return
		}

		result, err := svc.Bulk(r.Context(), approvals.BulkInput{
			Entity:    entity,
			Action:    action,
			IDs:       body.IDs,
			Reason:    body.Reason,
			ActorID:   act.ID,
			ActorRole: act.Role,
		})
		recordAction(m, entity.String(), action.String(), err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
