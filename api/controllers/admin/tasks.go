package admin

import (
	"net/http"
	"strings"

	"github.com/taskhive/taskhive-backend/api/responses"
	"github.com/taskhive/taskhive-backend/api/validators"
	"github.com/taskhive/taskhive-backend/internal/tasks"
	"github.com/taskhive/taskhive-backend/pkg/enums"
	pkgerrors "github.com/taskhive/taskhive-backend/pkg/errors"
	"github.com/taskhive/taskhive-backend/pkg/logger"
	"github.com/taskhive/taskhive-backend/pkg/metrics"
)

type taskRejectRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

// TaskApprove accepts a submitted proof of work.
func TaskApprove(svc tasks.Service, m *metrics.Metrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		taskID, err := parseIDParam(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Approve(r.Context(), tasks.ApproveInput{
			TaskID:    taskID,
			ActorID:   act.ID,
			ActorRole: act.Role,
		})
		recordAction(m, "task", "approve", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// TaskReject sends a submission back to the worker with a reason.
func TaskReject(svc tasks.Service, m *metrics.Metrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		taskID, err := parseIDParam(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body taskRejectRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Reject(r.Context(), tasks.RejectInput{
			TaskID:    taskID,
			ActorID:   act.ID,
			ActorRole: act.Role,
			Reason:    body.Reason,
		})
		recordAction(m, "task", "reject", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// TaskList returns the review queue for a status, submitted by default.
func TaskList(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rawStatus := strings.TrimSpace(r.URL.Query().Get("status"))
		status := enums.TaskStatusSubmitted
		if rawStatus != "" {
			status, err = enums.ParseTaskStatus(rawStatus)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
		}

		rows, err := svc.ListByStatus(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		envelope := listEnvelope{Items: rows}
		if n := len(rows); n > 0 {
			last := rows[n-1]
			envelope.NextCursor = encodeNextCursor(last.CreatedAt, last.ID, n, params.Limit)
		}
		responses.WriteSuccess(w, envelope)
	}
}
