package dto

// CheckoutInput is what the checkout handler extracts from the multipart
// form before handing it to the order service.
type CheckoutInput struct {
	ProductID    string
	ProductTitle string
	ProductPrice string
	UserName     string
	UserEmail    string
	Requirement  string
	Additional   string

	FileName    string
	FileType    string
	FileContent []byte
}

type CheckoutResponse struct {
	Success          bool   `json:"success"`
	PaymentSelectURL string `json:"paymentSelectUrl"`
	OrderID          string `json:"orderId"`
	Message          string `json:"message"`
}

type PaymentSelection struct {
	OrderID      string  `json:"orderId"`
	ProductTitle string  `json:"productTitle"`
	ProductPrice float64 `json:"productPrice"`
	UserName     string  `json:"userName"`
	Status       string  `json:"status"`
}

type PaymentRequest struct {
	OrderID string `json:"orderId"`
}

type StripePaymentResponse struct {
	Success     bool   `json:"success"`
	CheckoutURL string `json:"checkoutUrl"`
	OrderID     string `json:"orderId"`
	SessionID   string `json:"sessionId"`
}

type PaypalPaymentResponse struct {
	Success       bool   `json:"success"`
	ApproveURL    string `json:"approveUrl"`
	OrderID       string `json:"orderId"`
	PaypalOrderID string `json:"paypalOrderId"`
}

type ConfirmOrderRequest struct {
	SessionID string `json:"sessionId"`
	OrderID   string `json:"orderId"`
}

type ConfirmOrderResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	OrderID          string `json:"orderId"`
	AlreadyProcessed bool   `json:"alreadyProcessed,omitempty"`
	FileAttached     bool   `json:"fileAttached"`
}

type DownloadFileRequest struct {
	OrderID string `json:"orderId"`
}

type DownloadFileResponse struct {
	Success  bool   `json:"success"`
	FileData string `json:"fileData"`
	FileName string `json:"fileName"`
}

// -------- auth --------

type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsVerified bool   `json:"isVerified"`
}

type TokenRequest struct {
	Token string `json:"token"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

// -------- marketing --------

type ContactRequest struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Message   string   `json:"message"`
	Services  []string `json:"services"`
}
