package model

// PaymentMethod is an option offered on the payment page.
type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// DefaultPaymentMethods is offered when the payment service cannot list its
// own methods.
var DefaultPaymentMethods = []PaymentMethod{
	{ID: "credit_card", Name: "Thẻ tín dụng/ghi nợ", Icon: "credit-card"},
	{ID: "momo", Name: "Ví MoMo", Icon: "wallet"},
	{ID: "vnpay", Name: "VNPay", Icon: "banknotes"},
	{ID: "bank_transfer", Name: "Chuyển khoản ngân hàng", Icon: "building-library"},
}
