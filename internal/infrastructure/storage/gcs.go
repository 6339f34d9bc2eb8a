// Package storage guarda las evidencias firmadas de entrega en Google Cloud Storage.
package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

var _ inventory.ProofStorage = (*GCS)(nil)

// allowedContentTypes formatos aceptados para una evidencia de entrega.
var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// GCS almacenamiento de evidencias en un bucket.
type GCS struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewGCS abre el cliente. Con credentialsJSON vacío se usan las credenciales por defecto (ADC).
func NewGCS(ctx context.Context, bucket, credentialsJSON, baseURL string) (*GCS, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cliente GCS: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("bucket %q no accesible: %w", bucket, err)
	}
	return &GCS{client: client, bucket: bucket, baseURL: baseURL}, nil
}

// Upload escribe el objeto y devuelve su URL. El tipo se detecta del contenido cuando contentType
// viene vacío o es genérico; solo se aceptan PDF, JPEG y PNG.
func (g *GCS) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	br := bufio.NewReaderSize(r, 512)
	ct, err := resolveContentType(br, contentType)
	if err != nil {
		return "", err
	}

	w := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = ct
	if _, err := io.Copy(w, br); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("escribir %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("cerrar %s: %w", objectName, err)
	}
	return ObjectURL(g.baseURL, g.bucket, objectName), nil
}

// Close libera el cliente.
func (g *GCS) Close() error {
	return g.client.Close()
}

// ObjectURL URL pública del objeto: <base>/<bucket>/<objeto escapado por segmento>.
func ObjectURL(baseURL, bucket, objectName string) string {
	segments := strings.Split(objectName, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(baseURL, "/") + "/" + bucket + "/" + strings.Join(segments, "/")
}

func resolveContentType(br *bufio.Reader, declared string) (string, error) {
	declared = strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
	if declared != "" && declared != "application/octet-stream" {
		if !allowedContentTypes[declared] {
			return "", domain.Invalid("file", "tipo de archivo no soportado: "+declared)
		}
		return declared, nil
	}
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", fmt.Errorf("leer evidencia: %w", err)
	}
	if len(head) == 0 {
		return "", domain.Invalid("file", "archivo vacío")
	}
	detected := strings.SplitN(http.DetectContentType(head), ";", 2)[0]
	if !allowedContentTypes[detected] {
		return "", domain.Invalid("file", "tipo de archivo no soportado: "+detected)
	}
	return detected, nil
}
