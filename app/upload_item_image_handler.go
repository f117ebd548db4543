package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
}

type UploadItemImageHandler struct {
	repository     Repository
	images         ImageStore
	eventPublisher events.Publisher
}

func NewUploadItemImageHandler(repository Repository, images ImageStore, eventPublisher events.Publisher) *UploadItemImageHandler {
	return &UploadItemImageHandler{
		repository:     repository,
		images:         images,
		eventPublisher: eventPublisher,
	}
}

type UploadItemImageRequest struct {
	ItemID      int64
	ContentType string
	Data        []byte
}

type UploadItemImageResponse struct {
	ItemID   int64  `json:"itemId"`
	ImageURL string `json:"imageUrl"`
}

func (h *UploadItemImageHandler) Handle(ctx context.Context, req *UploadItemImageRequest) (*UploadItemImageResponse, error) {
	if h.images == nil {
		return nil, httperror.InternalServerError("upload_item_image.unavailable", "Image storage is not configured", nil)
	}

	item, err := h.repository.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound("upload_item_image.not_found", "Item not found.", nil)
		}
		return nil, httperror.InternalServerError("upload_item_image.failed", "Failed to retrieve item", nil)
	}

	if len(req.Data) > maxImageSize {
		return nil, httperror.BadRequest("upload_item_image.file_too_large", "File size must not exceed 5MB",
			map[string]any{
				"size_mb": float64(len(req.Data)) / 1024 / 1024,
				"max_mb":  5,
			})
	}

	extension, ok := allowedImageTypes[req.ContentType]
	if !ok {
		return nil, httperror.BadRequest("upload_item_image.invalid_content_type", "Only PNG, JPEG/JPG images are allowed",
			map[string]any{
				"received": req.ContentType,
				"allowed":  []string{"image/png", "image/jpeg", "image/jpg"},
			})
	}

	key := fmt.Sprintf("items/%d/%s%s", item.ID, uuid.New().String(), extension)

	if err := h.images.Upload(key, req.Data); err != nil {
		return nil, httperror.InternalServerError("upload_item_image.upload_failed", "Failed to upload image to storage", err.Error())
	}

	imageURL := h.images.URL(key)
	item.ImageURL = &imageURL

	if _, err := h.repository.UpdateItem(ctx, item); err != nil {
		if delErr := h.images.Delete(key); delErr != nil {
			zap.L().Warn("Failed to remove orphaned image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, httperror.InternalServerError("upload_item_image.store_failed", "Failed to save image metadata", err.Error())
	}

	publish(ctx, h.eventPublisher, events.ItemExchange, events.ItemImageUploadedEvent, events.ItemImageUploadedPayload{
		ItemID:    item.ID,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	})

	return &UploadItemImageResponse{
		ItemID:   item.ID,
		ImageURL: imageURL,
	}, nil
}
