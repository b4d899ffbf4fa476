package leave

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidTransition   = errors.New("request is not pending")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrInvalidStatus       = errors.New("status must be approved or rejected")
)

// ProcessRequest moves a pending request to approved or rejected. The whole
// decision runs in one transaction: the request row is locked first, the
// balance row second, and the audit record commits with the status change or
// not at all. A rejected request never touches the balance.
func (s *Service) ProcessRequest(ctx context.Context, orgID, actorUserID, requestID, newStatus string) error {
	if newStatus != StatusApproved && newStatus != StatusRejected {
		return ErrInvalidStatus
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	req, err := s.Store.lockRequestTx(ctx, tx, orgID, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if req.Status != StatusPending {
		return ErrInvalidTransition
	}

	if newStatus == StatusApproved {
		holidays, err := s.Store.HolidayDates(ctx, orgID, req.StartDate, req.EndDate)
		if err != nil {
			return err
		}
		days, err := CalculateLeaveDays(req.StartDate, req.EndDate, holidays)
		if err != nil {
			return err
		}

		balance, err := s.Store.lockBalanceTx(ctx, tx, orgID, req.EmployeeID, req.LeaveTypeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInsufficientBalance
			}
			return err
		}
		if balance < float64(days) {
			return ErrInsufficientBalance
		}
		if err := s.Store.debitBalanceTx(ctx, tx, orgID, req.EmployeeID, req.LeaveTypeID, float64(days)); err != nil {
			return err
		}
	}

	if err := s.Store.setRequestStatusTx(ctx, tx, orgID, requestID, newStatus, actorUserID); err != nil {
		return err
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "leave."+newStatus, "leave_request", requestID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
