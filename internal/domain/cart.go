package domain

// LineItem is a cart entry. Name, price and image are cached from the
// product at the time it was first added.
type LineItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
	Qty   int     `json:"qty"`
}

// Order is the plain-text order summary and the deep links built from it
type Order struct {
	Text        string `json:"text"`
	WhatsAppURL string `json:"whatsappUrl"`
	MailtoURL   string `json:"mailtoUrl"`
}

// AddRequest is the body of a cart add
type AddRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Qty       any    `json:"qty,omitempty"`
}

// SetQtyRequest is the body of a quantity update
type SetQtyRequest struct {
	Qty any `json:"qty"`
}
