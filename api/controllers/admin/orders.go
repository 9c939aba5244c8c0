package admin

import (
	"net/http"
	"strings"

	"github.com/taskhive/taskhive-backend/api/responses"
	"github.com/taskhive/taskhive-backend/api/validators"
	"github.com/taskhive/taskhive-backend/internal/orders"
	"github.com/taskhive/taskhive-backend/pkg/enums"
	pkgerrors "github.com/taskhive/taskhive-backend/pkg/errors"
	"github.com/taskhive/taskhive-backend/pkg/logger"
	"github.com/taskhive/taskhive-backend/pkg/metrics"
)

type orderDecisionRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=500"`
}

type orderRejectRequest struct {
	Reason string  `json:"reason" validate:"required,min=5,max=500"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

type orderRefundRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

type orderStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// OrderApprove moves a pending order into processing.
func OrderApprove(svc orders.Service, m *metrics.Metrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderDecisionRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		updated, err := svc.Approve(r.Context(), orders.ApproveInput{
			OrderID:   orderID,
			ActorID:   act.ID,
			ActorRole: act.Role,
			Notes:     body.Notes,
		})
		recordAction(m, "order", "approve", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// OrderReject cancels a pending order. No money moves.
func OrderReject(svc orders.Service, m *metrics.Metrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderRejectRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Reject(r.Context(), orders.RejectInput{
			OrderID:   orderID,
			ActorID:   act.ID,
			ActorRole: act.Role,
			Reason:    body.Reason,
			Notes:     body.Notes,
		})
		recordAction(m, "order", "reject", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// OrderRefund returns the order amount to the buyer's balance.
func OrderRefund(svc orders.Service, m *metrics.Metrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderRefundRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Refund(r.Context(), orders.RefundInput{
			OrderID:   orderID,
			ActorID:   act.ID,
			ActorRole: act.Role,
			Reason:    body.Reason,
		})
		recordAction(m, "order", "refund", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// OrderSetStatus is the manual override for support interventions.
func OrderSetStatus(svc orders.Service, m *metrics.Metrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		updated, err := svc.SetStatus(r.Context(), orders.SetStatusInput{
			OrderID:   orderID,
			ActorID:   act.ID,
			ActorRole: act.Role,
			Status:    status,
			Reason:    body.Reason,
		})
		recordAction(m, "order", "set_status", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// OrderList returns the review queue for a status, pending by default.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rawStatus := strings.TrimSpace(r.URL.Query().Get("status"))
		status := enums.OrderStatusPending
		if rawStatus != "" {
			status, err = enums.ParseOrderStatus(rawStatus)
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
