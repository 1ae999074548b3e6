package objstore

import (
	"context"
	"io"
)

// Store abstrae el almacenamiento de fotos (colaborador externo).
type Store interface {
	// Put guarda el objeto y devuelve su URL pública.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Get abre el objeto para lectura (lo consume el pipeline de CV).
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
