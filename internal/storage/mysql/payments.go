package mysql

import (
	"context"
	"database/sql"
	"time"

	"hotel_booking/internal/domain"
)

func scanPayment(s scanner) (domain.Payment, error) {
	var p domain.Payment
	var status string
	var txID sql.NullString
	var paidAt sql.NullTime
	if err := s.Scan(&p.ID, &p.BookingID, &p.Amount, &p.PaymentMethod, &status, &txID, &paidAt,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Payment{}, err
	}
	p.Status = domain.PaymentStatus(status)
	p.TransactionID = strPtr(txID)
	p.PaidAt = timePtr(paidAt)
	return p, nil
}

func (r *Repo) CreatePayment(ctx context.Context, p domain.Payment, job domain.PaymentJob) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertPaymentSQL,
			p.ID, p.BookingID, p.Amount, p.PaymentMethod, string(p.Status),
			valStr(p.TransactionID), valTime(p.PaidAt), p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return mapWriteErr(err, "payment")
		}
		_, err := tx.ExecContext(ctx, insertPaymentJobSQL, job.ID, p.ID, job.DueAt, job.CreatedAt, job.CreatedAt)
		return err
	})
}

func (r *Repo) ListPayments(ctx context.Context, bookingID string) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, listPaymentsSQL, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) ClaimPaymentJobs(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.PaymentJob, error) {
	var jobs []domain.PaymentJob
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, claimPaymentJobsSQL, now, limit)
		if err != nil {
			return err
		}
		for rows.Next() {
			var j domain.PaymentJob
			var status string
			var lastErr sql.NullString
			if err := rows.Scan(&j.ID, &j.PaymentID, &j.DueAt, &j.Attempts, &status, &lastErr, &j.CreatedAt,
				&j.BookingID, &j.Amount, &j.PaymentMethod); err != nil {
				rows.Close()
				return err
			}
			j.Status = domain.JobStatus(status)
			j.LastError = strPtr(lastErr)
			jobs = append(jobs, j)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}
		for i := range jobs {
			if _, err := tx.ExecContext(ctx, leasePaymentJobSQL, now.Add(lease), now, jobs[i].ID); err != nil {
				return err
			}
			jobs[i].Attempts++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *Repo) CompletePayment(ctx context.Context, job domain.PaymentJob, transactionID string, at time.Time) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, completePaymentSQL, at, transactionID, at, job.PaymentID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, closePaymentJobSQL, nil, at, job.ID)
		return err
	})
}

func (r *Repo) RetryPaymentJob(ctx context.Context, jobID string, dueAt time.Time, reason string) error {
	_, err := r.db.ExecContext(ctx, retryPaymentJobSQL, dueAt, reason, time.Now().UTC(), jobID)
	return err
}

func (r *Repo) FailPayment(ctx context.Context, job domain.PaymentJob, reason string, at time.Time) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, failPaymentSQL, at, job.PaymentID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, closePaymentJobSQL, reason, at, job.ID)
		return err
	})
}
