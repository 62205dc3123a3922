// s3.go — реализация Store поверх S3-совместимого API (MinIO).
package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Store — хранилище объектов в S3-совместимом бакете.
type S3Store struct {
	client *s3.Client
	bucket string
}

// S3Config — параметры подключения к S3.
type S3Config struct {
	// Endpoint S3 API (для MinIO — адрес сервера)
	Endpoint string
	// Регион (для MinIO — любой непустой)
	Region string
	// Статические учётные данные (MINIO_ROOT_USER / MINIO_ROOT_PASSWORD)
	AccessKey string
	SecretKey string
	// Бакет исходных файлов
	Bucket string
}

// NewS3Store создаёт клиент S3 со статическими учётными данными
// и кастомным endpoint (path-style для MinIO).
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"", // токен сессии не нужен
		)))
	if err != nil {
		return nil, fmt.Errorf("инициализация AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Put записывает объект с условием If-None-Match: * — запись проходит
// только если ключа ещё нет. Занятый ключ — ErrConflict.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return ErrConflict
		}
		return fmt.Errorf("запись объекта %s: %w", key, err)
	}
	return nil
}

// Get возвращает байты и Content-Type объекта.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("чтение объекта %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("чтение тела объекта %s: %w", key, err)
	}
	return data, aws.ToString(out.ContentType), nil
}

// Delete удаляет объекты одним запросом DeleteObjects.
func (s *S3Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
	}

	_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("удаление объектов: %w", err)
	}
	return nil
}

// Exists проверяет наличие объекта через HeadObject.
func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("проверка объекта %s: %w", key, err)
	}
	return true, nil
}
