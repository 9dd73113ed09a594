package client

import (
	"context"
)

// VisionClient sends one prompt plus a base64 image to a vision model and
// returns the model's raw text answer.
type VisionClient interface {
	Query(ctx context.Context, model, prompt, imgB64 string) (string, error)
}
