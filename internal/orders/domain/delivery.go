package domain

import "time"

// DeliveryInformation describes when and where an order should be delivered.
type DeliveryInformation struct {
	ID                  int64     `json:"id"`
	DeliveryDate        string    `json:"deliveryDate"`
	DeliveryTime        string    `json:"deliveryTime"`
	DeliveryAddress     string    `json:"deliveryAddress"`
	SpecialInstructions string    `json:"specialInstructions"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}
