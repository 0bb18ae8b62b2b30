package procedures

type CreateOrderRequest struct {
	BranchID      int64  `json:"branchId"`
	CustomerID    int64  `json:"customerId"`
	EmployeeID    int64  `json:"employeeId"`
	PetID         *int64 `json:"petId"`
	PaymentMethod string `json:"paymentMethod"`
}

type CreateOrderResponse struct {
	InvoiceID int64 `json:"invoiceId"`
}

type AddItemRequest struct {
	InvoiceID int64  `json:"invoiceId"`
	ItemType  string `json:"itemType"`
	ItemID    int64  `json:"itemId"`
	Quantity  int    `json:"quantity"`
}

type ConfirmInvoiceRequest struct {
	InvoiceID     int64  `json:"invoiceId"`
	PaymentMethod string `json:"paymentMethod"`
}
