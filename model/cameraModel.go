// model/camera.go
package model

import "time"

type CameraStatus string

const (
	CameraActive   CameraStatus = "active"
	CameraInactive CameraStatus = "inactive"
)

type Camera struct {
	ID             string            `json:"id"`
	LenderID       string            `json:"lender_id"`
	Name           string            `json:"name"`
	Brand          string            `json:"brand,omitempty"`
	Model          string            `json:"model,omitempty"`
	Category       string            `json:"category"`
	Description    string            `json:"description"`
	PricePerDay    float64           `json:"price_per_day"`
	ImageURL       string            `json:"image_url,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Status         CameraStatus      `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
}

// CameraFilter narrows catalog searches. Zero values mean "no constraint".
type CameraFilter struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	LenderID string
	Limit    int
}

// CreateCameraReq represents a new listing payload
// swagger:model CreateCameraReq
type CreateCameraReq struct {
	Name           string            `json:"name" validate:"required,min=3,max=200"`
	Brand          string            `json:"brand"`
	Model          string            `json:"model"`
	Category       string            `json:"category" validate:"required"`
	Description    string            `json:"description" validate:"required,min=10,max=2000"`
	PricePerDay    float64           `json:"price_per_day" validate:"required,gt=0,lte=10000"`
	ImageURL       string            `json:"image_url" validate:"omitempty,url"`
	Specifications map[string]string `json:"specifications"`
}
