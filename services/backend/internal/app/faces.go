package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"irisguide/pkg/domain"
	"irisguide/pkg/storage"
)

const presignConcurrency = 8

// FaceInput is the add-face request body.
type FaceInput struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	ImageURL     string `json:"imageUrl"`
	Relationship string `json:"relationship"`
}

// AddFace enrolls a known person for an existing account. Image data URLs are
// moved to object storage when one is configured.
func (a *App) AddFace(ctx context.Context, in FaceInput) (domain.Face, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Face{}, ErrFaceNameRequired
	}
	imageURL := strings.TrimSpace(in.ImageURL)
	if imageURL == "" {
		return domain.Face{}, ErrFaceImageRequired
	}
	acct, err := a.GetAccount(in.UserID)
	if err != nil {
		return domain.Face{}, err
	}
	relationship := strings.TrimSpace(in.Relationship)
	if relationship == "" {
		relationship = domain.DefaultRelationship
	}
	face := domain.Face{
		ID:           uuid.NewString(),
		UserID:       acct.ID,
		Name:         name,
		ImageURL:     imageURL,
		Relationship: relationship,
		CreatedAt:    time.Now().UTC(),
	}
	if a.objects != nil {
		ref, err := a.storeImage(ctx, face, imageURL)
		if err != nil {
			return domain.Face{}, err
		}
		face.ImageURL = ref
	}
	if err := a.store.SaveFace(face); err != nil {
		return domain.Face{}, fmt.Errorf("save face: %w", err)
	}
	return a.presentFace(ctx, face), nil
}

func (a *App) storeImage(ctx context.Context, face domain.Face, raw string) (string, error) {
	img, err := storage.DecodeDataURL(raw)
	if errors.Is(err, storage.ErrNotDataURL) {
		return raw, nil
	}
	if err != nil {
		return "", domain.Invalid("imageUrl", err.Error())
	}
	key := storage.FaceImageKey(face.UserID, face.ID, img.ContentType)
	if err := a.objects.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), img.ContentType); err != nil {
		return "", fmt.Errorf("store face image: %w", err)
	}
	return storage.Reference(a.objects.Bucket(), key), nil
}

// ListFaces returns the faces enrolled by userID in insertion order.
func (a *App) ListFaces(ctx context.Context, userID string) ([]domain.Face, error) {
	faces, err := a.store.ListFacesByUser(strings.TrimSpace(userID))
	if err != nil {
		return nil, fmt.Errorf("list faces: %w", err)
	}
	if a.objects == nil || len(faces) == 0 {
		return faces, nil
	}
	out := make([]domain.Face, len(faces))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(presignConcurrency)
	for i, f := range faces {
		i, f := i, f
		g.Go(func() error {
			out[i] = a.presentFace(gctx, f)
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// presentFace swaps an object reference for a presigned URL. On failure the
// reference is returned unchanged.
func (a *App) presentFace(ctx context.Context, f domain.Face) domain.Face {
	if a.objects == nil {
		return f
	}
	bucket, key, ok := storage.ParseReference(f.ImageURL)
	if !ok || bucket != a.objects.Bucket() {
		return f
	}
	url, err := a.objects.PresignGet(ctx, key, a.presignTTL)
	if err != nil {
		slog.Warn("presign face image failed", "face_id", f.ID, "err", err)
		return f
	}
	f.ImageURL = url
	return f
}
