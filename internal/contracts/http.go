package contracts

type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorPayload struct {
	Code            string   `json:"code"`
	Message         string   `json:"message"`
	RequestID       string   `json:"request_id,omitempty"`
	ConflictingSKUs []string `json:"conflicting_skus,omitempty"`
}

type ErrorResponse struct {
	Status    string       `json:"status"`
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
	Error     ErrorPayload `json:"error"`
}

type PagedResult[T any] struct {
	Page  uint64 `json:"page"`
	Items []T    `json:"items"`
}

type Profile struct {
	ID                   uint64                `json:"id"`
	Email                string                `json:"email"`
	Firstname            string                `json:"firstname"`
	Lastname             string                `json:"lastname"`
	ProductRegistrations []ProductRegistration `json:"product_registrations"`
}

type Product struct {
	SKU string `json:"sku"`
}

// ProductRegistration carries times as milliseconds since the Unix epoch.
type ProductRegistration struct {
	ID                             uint64                   `json:"id"`
	PurchaseDate                   int64                    `json:"purchase_date"`
	ExpiryAt                       *int64                   `json:"expiry_at"`
	Product                        Product                  `json:"product"`
	SerialCode                     string                   `json:"serial_code"`
	AdditionalProductRegistrations []AdditionalRegistration `json:"additional_product_registrations"`
}

type AdditionalRegistration struct {
	ID           uint64  `json:"id"`
	PurchaseDate int64   `json:"purchase_date"`
	ExpiryAt     *int64  `json:"expiry_at"`
	Product      Product `json:"product"`
	SerialCode   string  `json:"serial_code"`
}

type CreateRegistrationRequest struct {
	SKU string `json:"sku"`
}

// CreateProductRequest.ActiveFor is a duration in seconds.
type CreateProductRequest struct {
	SKU             string   `json:"sku"`
	BundledProducts []string `json:"bundled_products"`
	ActiveFor       *int64   `json:"active_for,omitempty"`
}

type CreateProductResponse struct {
	SKUAdded        string   `json:"sku_added"`
	BundledProducts []string `json:"bundled_products"`
}

type ProductResponse struct {
	SKU       string   `json:"sku"`
	Exists    bool     `json:"exists"`
	Leaf      bool     `json:"leaf,omitempty"`
	ActiveFor *int64   `json:"active_for,omitempty"`
	Leaves    []string `json:"leaves,omitempty"`
}
