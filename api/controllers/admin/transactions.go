package admin

import (
	"net/http"
	"strings"

	"github.com/taskhive/taskhive-backend/api/responses"
	"github.com/taskhive/taskhive-backend/api/validators"
	"github.com/taskhive/taskhive-backend/internal/transactions"
	"github.com/taskhive/taskhive-backend/pkg/enums"
	pkgerrors "github.com/taskhive/taskhive-backend/pkg/errors"
	"github.com/taskhive/taskhive-backend/pkg/logger"
	"github.com/taskhive/taskhive-backend/pkg/metrics"
)

type transactionDecisionRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=500"`
}

type transactionRejectRequest struct {
	Reason string  `json:"reason" validate:"required,min=5,max=500"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

// TransactionApprove finalizes a pending deposit or withdrawal.
func TransactionApprove(svc transactions.Service, m *metrics.Metrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txnID, err := parseIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body transactionDecisionRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		updated, err := svc.Approve(r.Context(), transactions.ApproveInput{
			TransactionID: txnID,
			ActorID:       act.ID,
			ActorRole:     act.Role,
			Notes:         body.Notes,
		})
		recordAction(m, "transaction", "approve", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// TransactionReject fails a pending transaction, refunding withdrawals.
func TransactionReject(svc transactions.Service, m *metrics.Metrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txnID, err := parseIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body transactionRejectRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Reject(r.Context(), transactions.RejectInput{
			TransactionID: txnID,
			ActorID:       act.ID,
			ActorRole:     act.Role,
			Reason:        body.Reason,
			Notes:         body.Notes,
		})
		recordAction(m, "transaction", "reject", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// TransactionList returns the review queue for a status, pending by default.
func TransactionList(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rawStatus := strings.TrimSpace(r.URL.Query().Get("status"))
		status := enums.TransactionStatusPending
		if rawStatus != "" {
			status, err = enums.ParseTransactionStatus(rawStatus)
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
