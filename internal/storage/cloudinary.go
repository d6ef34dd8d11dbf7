package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary stores images as Cloudinary assets whose public id is the key.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary connects using a CLOUDINARY_URL style url.
func NewCloudinary(cloudURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Put(ctx context.Context, key, _ string, data []byte) error {
	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:  key,
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("cloudinary upload %s: %w", key, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary upload %s: %s", key, res.Error.Message)
	}
	log.Printf("uploaded cloudinary image: %s", res.PublicID)
	return nil
}

func (c *Cloudinary) Delete(ctx context.Context, key string) error {
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", key, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", key, res.Error.Message)
	}
	if res.Result == "not found" {
		return ErrNotFound
	}
	log.Printf("deleted cloudinary image: %s", key)
	return nil
}

// URL builds the delivery URL. Cloudinary delivery URLs do not expire.
func (c *Cloudinary) URL(_ context.Context, key string) (string, error) {
	img, err := c.cld.Image(key)
	if err != nil {
		return "", fmt.Errorf("cloudinary url %s: %w", key, err)
	}
	return img.String()
}
