package httpvision

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"petradar/internal/domain/matching"
	"petradar/internal/platform/httpclient"
	"petradar/internal/ports/vision"
)

const minConfidence = 0.5

// Detector habla con el servicio de inferencia por HTTP. La imagen viaja
// en base64 dentro del JSON; los tamaños de foto que aceptamos (10MB) lo
// hacen razonable y evita multipart en el servicio de modelos.
type Detector struct {
	client        *httpclient.Client
	minConfidence float64
}

func New(baseURL string, timeout time.Duration) (*Detector, error) {
	client, err := httpclient.NewWithBaseURL(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &Detector{client: client, minConfidence: minConfidence}, nil
}

type detectRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type detectResponse struct {
	Detected   bool                `json:"detected"`
	Confidence float64             `json:"confidence"`
	Attributes matching.Attributes `json:"attributes"`
	Vector     []float32           `json:"feature_vector"`
}

func (d *Detector) DetectAndEmbed(ctx context.Context, image io.Reader) (vision.Detection, error) {
	raw, err := io.ReadAll(image)
	if err != nil {
		return vision.Detection{}, fmt.Errorf("httpvision: read image: %w", err)
	}

	var resp detectResponse
	err = d.client.DoJSON(ctx, "POST", "/detect-and-embed", nil, detectRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(raw),
	}, &resp)
	if err != nil {
		return vision.Detection{}, fmt.Errorf("httpvision: detect: %w", err)
	}

	if !resp.Detected {
		return vision.Detection{}, vision.ErrNoAnimalDetected
	}
	if resp.Confidence < d.minConfidence {
		return vision.Detection{}, vision.ErrLowConfidence
	}

	return vision.Detection{
		Attributes: resp.Attributes,
		Confidence: resp.Confidence,
		Vector:     resp.Vector,
	}, nil
}
