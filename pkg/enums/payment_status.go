package enums

// PaymentStatus mirrors the payment states reported by Mercado Pago.
type PaymentStatus string

const (
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusInProcess PaymentStatus = "in_process"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (p PaymentStatus) String() string {
	return string(p)
}
