package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// WriteContent uploads data as the whole object.
func (s *S3ContentStore) WriteContent(ctx context.Context, id metadata.ContentID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.putObject(ctx, id, data)
}

// WriteAt patches data into the object at offset.
//
// Implemented as read-modify-write:
//  1. Download the current object (treated as empty when missing)
//  2. Grow with zeros up to offset+len(data) and copy data in
//  3. Upload the result with PutObject
func (s *S3ContentStore) WriteAt(ctx context.Context, id metadata.ContentID, data []byte, offset int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := content.CheckWriteRange(offset, len(data)); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.download(ctx, id)
	if err != nil && !errorsIsNotFound(err) {
		return err
	}

	newSize := offset + int64(len(data))
	if int64(len(existing)) > newSize {
		newSize = int64(len(existing))
	}
	buf := make([]byte, newSize)
	copy(buf, existing)
	copy(buf[offset:], data)

	return s.putObject(ctx, id, buf)
}

// Truncate resizes the object by downloading and re-uploading it.
func (s *S3ContentStore) Truncate(ctx context.Context, id metadata.ContentID, newSize uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := content.CheckSize(newSize); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.download(ctx, id)
	if err != nil {
		if errorsIsNotFound(err) {
			return fmt.Errorf("truncate failed for %s: %w", id, content.ErrContentNotFound)
		}
		return err
	}
	if uint64(len(existing)) == newSize {
		return nil
	}

	buf := make([]byte, newSize)
	copy(buf, existing)
	return s.putObject(ctx, id, buf)
}

// Delete removes the object. S3 DeleteObject already succeeds for missing
// keys, so Delete is idempotent.
func (s *S3ContentStore) Delete(ctx context.Context, id metadata.ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getObjectKey(id)),
	})
	s.metrics.ObserveOperation("DeleteObject", time.Since(start), err)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete object %s: %w", id, err)
	}
	return nil
}

// download fetches the full object body.
func (s *S3ContentStore) download(ctx context.Context, id metadata.ContentID) ([]byte, error) {
	size, err := s.GetContentSize(ctx, id)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}
	return s.ReadAt(ctx, id, 0, int(size))
}

// putObject uploads data under id.
func (s *S3ContentStore) putObject(ctx context.Context, id metadata.ContentID, data []byte) error {
	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.getObjectKey(id)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	s.metrics.ObserveOperation("PutObject", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to write content to S3: %w", err)
	}
	s.metrics.RecordBytes("write", int64(len(data)))
	return nil
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, content.ErrContentNotFound)
}
