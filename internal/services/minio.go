package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Images grava as fotos de produto no bucket público (product-images).
type Images struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

func NewImages(client *minio.Client, bucket, endpoint string, useSSL bool) *Images {
	if client == nil {
		return nil
	}
	return &Images{client: client, bucket: bucket, endpoint: endpoint, useSSL: useSSL}
}

var allowedImageExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// UploadProductImage grava com nome aleatório e devolve a URL pública.
func (i *Images) UploadProductImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if i == nil {
		return "", fmt.Errorf("MinIO não configurado")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedImageExt[ext]
	if !ok {
		return "", fmt.Errorf("formato de imagem não suportado: %s", ext)
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	object := uuid.NewString() + ext
	_, err = i.client.PutObject(ctx, i.bucket, object, f, file.Size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return i.PublicURL(object), nil
}

func (i *Images) PublicURL(object string) string {
	scheme := "http"
	if i.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, i.endpoint, i.bucket, object)
}
