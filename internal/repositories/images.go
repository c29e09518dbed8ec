package repositories

import (
	"fmt"
	"strings"

	"github.com/desertthunder/cinedex/internal/models"
)

// ImageRepository keeps the local-only image of each record as a data URL.
type ImageRepository struct {
	kv *KVRepository
}

// NewImageRepository creates an [ImageRepository] backed by kv.
func NewImageRepository(kv *KVRepository) *ImageRepository {
	return &ImageRepository{kv: kv}
}

// Put stores dataURL as the image of record id.
func (r *ImageRepository) Put(id models.ID, dataURL string) error {
	if !id.Truthy() {
		return fmt.Errorf("cannot store image without a record id")
	}
	return r.kv.Set(models.ImageKey(id), dataURL)
}

// Get returns the stored data URL for id. The boolean is false when there is none.
func (r *ImageRepository) Get(id models.ID) (string, bool, error) {
	return r.kv.Get(models.ImageKey(id))
}

// Delete drops the image of id.
func (r *ImageRepository) Delete(id models.ID) error {
	return r.kv.Delete(models.ImageKey(id))
}

// IDs lists the records that have a local image.
func (r *ImageRepository) IDs() ([]models.ID, error) {
	keys, err := r.kv.Keys(models.ImageKeyPrefix)
	if err != nil {
		return nil, err
	}

	ids := make([]models.ID, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, models.ID(strings.TrimPrefix(key, models.ImageKeyPrefix)))
	}
	return ids, nil
}
