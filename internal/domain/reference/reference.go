package reference

// Status is a label scoped to a business module, e.g. "Closed" in "Sales".
type Status struct {
	ID     int64
	Name   string
	Module string
}

// PaymentMethod is a transaction-payment code (trpa code number).
type PaymentMethod struct {
	Code string
	Name string
}
