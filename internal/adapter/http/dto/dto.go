package dto

import (
	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"
)

// LoginRequest is the request body for staff login.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	PIN      string `json:"pin" binding:"required,numeric,min=4,max=12"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CustomerRequest carries optional payer details for a checkout.
type CustomerRequest struct {
	FirstName string `json:"first_name" binding:"omitempty,max=100,plain_text"`
	LastName  string `json:"last_name" binding:"omitempty,max=100,plain_text"`
	Email     string `json:"email" binding:"omitempty,email,max=100"`
	Phone     string `json:"phone" binding:"omitempty,e164|numeric,max=20"`
}

// CheckoutRequest is the optional request body for starting a PayFast checkout.
type CheckoutRequest struct {
	ItemName            string           `json:"item_name" binding:"omitempty,max=100,plain_text"`
	ItemDescription     string           `json:"item_description" binding:"omitempty,max=255,plain_text"`
	Customer            *CustomerRequest `json:"customer"`
	ConfirmationAddress string           `json:"confirmation_address" binding:"omitempty,email,max=100"`
	CustomStr           []string         `json:"custom_str" binding:"max=5,dive,max=255,plain_text"`
	CustomInt           []*int64         `json:"custom_int" binding:"max=5"`
}

// ToPorts maps the body onto the service request.
func (r CheckoutRequest) ToPorts() ports.CheckoutRequest {
	req := ports.CheckoutRequest{
		ItemName:            r.ItemName,
		ItemDescription:     r.ItemDescription,
		ConfirmationAddress: r.ConfirmationAddress,
	}
	if r.Customer != nil {
		req.Customer = domain.Customer{
			FirstName: r.Customer.FirstName,
			LastName:  r.Customer.LastName,
			Email:     r.Customer.Email,
			Phone:     r.Customer.Phone,
		}
	}
	for i := 0; i < len(r.CustomStr) && i < domain.CustomSlots; i++ {
		req.Custom.Str[i] = r.CustomStr[i]
	}
	for i := 0; i < len(r.CustomInt) && i < domain.CustomSlots; i++ {
		req.Custom.Int[i] = r.CustomInt[i]
	}
	return req
}

// CheckoutResponse is the signed form the browser posts to the gateway.
type CheckoutResponse struct {
	OrderID          string            `json:"order_id"`
	PaymentReference string            `json:"payment_reference"`
	Amount           string            `json:"amount"`
	ActionURL        string            `json:"action_url"`
	Fields           []ports.FormField `json:"fields"`
}

// PaymentResponse is one settled payment in reports.
type PaymentResponse struct {
	ID               string              `json:"id"`
	OrderID          string              `json:"order_id"`
	GatewayReference string              `json:"gateway_reference"`
	AmountGross      string              `json:"amount_gross"`
	AmountFee        string              `json:"amount_fee"`
	AmountNet        string              `json:"amount_net"`
	Method           string              `json:"method"`
	CustomFields     domain.CustomFields `json:"custom_fields"`
	PaidAt           string              `json:"paid_at"`
}

// PaymentStatsResponse is the response for payment statistics.
type PaymentStatsResponse struct {
	Period      string `json:"period"`
	TotalCount  int64  `json:"total_count"`
	GrossVolume string `json:"gross_volume"`
	FeeVolume   string `json:"fee_volume"`
	NetVolume   string `json:"net_volume"`
}

// PaymentListResponse wraps a paginated payment list.
type PaymentListResponse struct {
	Items      []PaymentResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// PaymentListQuery binds the report list query string.
type PaymentListQuery struct {
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}
