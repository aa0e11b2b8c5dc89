package models

// Expense is a single shared payment inside a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	Description string

	// Amount is the total paid, never negative.
	Amount float64

	// Currency is an ISO 4217 code such as "USD".
	Currency string

	// PayerID is the member who paid the full amount.
	PayerID string

	// AddedBy is the user who recorded the expense.
	AddedBy string

	// ReceiptURL optionally links to a scanned receipt.
	ReceiptURL string

	CreatedAt int64
	UpdatedAt int64

	// OwedBy lists each participant's share, in the order it was entered.
	// The payer's own share is included. The shares should add up to Amount
	// but this is not enforced.
	OwedBy []OwedShare
}

// OwedShare is one participant's portion of an expense.
type OwedShare struct {
	MemberID string
	Amount   float64
}

// GroupLedger is a group together with every one of its expenses, read at a
// single point in time.
type GroupLedger struct {
	Group    *Group
	Expenses []*Expense
}
