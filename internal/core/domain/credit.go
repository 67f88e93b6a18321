package domain

// Customer carries the credit-control fields of a customer account. The
// wider customer master lives elsewhere; this service only needs identity,
// the limit and the receivable account linkage.
type Customer struct {
	CustomerID  string `json:"customerID"`  // Primary Key (UUID)
	Name        string `json:"name"`
	AccountCode string `json:"accountCode"` // Receivable account in the chart of accounts
	CreditLimit Money  `json:"creditLimit"` // Zero means no credit extended
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// CreditStatus is a point-in-time snapshot of a customer's credit position.
// Used credit is the signed balance of the customer's receivable account at
// the time of the query; the snapshot can be stale by the time a caller acts
// on it, so enforcement decisions re-derive it inside the posting
// transaction.
type CreditStatus struct {
	CustomerID      string `json:"customerID"`
	CreditLimit     Money  `json:"creditLimit"`
	UsedCredit      Money  `json:"usedCredit"`
	AvailableCredit Money  `json:"availableCredit"` // creditLimit - usedCredit, may be negative
}

// OverLimit reports whether used credit exceeds the limit.
func (s CreditStatus) OverLimit() bool {
	return s.AvailableCredit.IsNegative()
}
