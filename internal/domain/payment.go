package domain

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID            string        `json:"id"`
	BookingID     string        `json:"bookingId"`
	Amount        float64       `json:"amount"`
	PaymentMethod string        `json:"paymentMethod"`
	Status        PaymentStatus `json:"status"`
	TransactionID *string       `json:"transactionId"`
	PaidAt        *time.Time    `json:"paidAt"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type JobStatus string

const (
	JobQueued JobStatus = "queued"
	JobDone   JobStatus = "done"
)

// PaymentJob is the durable settlement task enqueued alongside a payment.
// BookingID, Amount and PaymentMethod are filled from the payment when the job
// is claimed.
type PaymentJob struct {
	ID            string
	PaymentID     string
	DueAt         time.Time
	Attempts      int
	Status        JobStatus
	LastError     *string
	CreatedAt     time.Time
	BookingID     string
	Amount        float64
	PaymentMethod string
}
