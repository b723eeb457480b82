package model

import "time"

// QRCode describes a generated class QR image.
type QRCode struct {
	ClassID     string    `json:"class_id"`
	Size        int       `json:"size"`
	GeneratedAt time.Time `json:"generated_at"`
}
