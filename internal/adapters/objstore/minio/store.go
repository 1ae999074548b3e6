package minio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"petradar/internal/platform/logger"
)

// Store guarda las fotos en un bucket MinIO/S3 con lectura pública.
type Store struct {
	client         *minio.Client
	bucket         string
	publicEndpoint string
	useSSL         bool
}

type Options struct {
	Endpoint       string
	PublicEndpoint string // opcional; default Endpoint
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
}

func New(opts Options, log logger.Logger) (*Store, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: new client: %w", err)
	}

	public := strings.TrimSuffix(strings.TrimSpace(opts.PublicEndpoint), "/")
	if public == "" {
		public = opts.Endpoint
	}

	s := &Store{
		client:         client,
		bucket:         opts.Bucket,
		publicEndpoint: public,
		useSSL:         opts.UseSSL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		// El bucket puede no ser alcanzable desde acá (p.ej. endpoint externo);
		// no es fatal, los Put fallarán con un error claro.
		log.Warn("minio bucket check failed", map[string]any{
			"bucket": opts.Bucket, "error": err.Error(),
		})
	} else if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			log.Error("minio bucket create failed", map[string]any{
				"bucket": opts.Bucket, "error": err.Error(),
			})
		}
	}

	log.Info("minio store initialized", map[string]any{
		"endpoint": opts.Endpoint, "bucket": opts.Bucket,
	})
	return s, nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio: put %s: %w", key, err)
	}
	return s.objectURL(key), nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", key, err)
	}
	return obj, nil
}

func (s *Store) objectURL(key string) string {
	if strings.Contains(s.publicEndpoint, "://") {
		return fmt.Sprintf("%s/%s/%s", s.publicEndpoint, s.bucket, key)
	}
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.publicEndpoint, s.bucket, key)
}
