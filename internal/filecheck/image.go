package filecheck

import (
	"bytes"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// validateImage reads image metadata without decoding pixel data and
// enforces the configured minimum dimensions.
func (v *Validator) validateImage(meta Metadata, data []byte) (Metadata, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		v.log.Warn("filecheck.image.decode_failed", "mime_type", meta.MIMEType, "error", err)
		return meta, invalidf("image could not be read; it may be damaged or mislabeled")
	}
	meta.Format = format
	meta.Width = cfg.Width
	meta.Height = cfg.Height

	if cfg.Width < v.limits.MinWidth || cfg.Height < v.limits.MinHeight {
		return meta, invalidf("image resolution %dx%d is below the minimum of %dx%d",
			cfg.Width, cfg.Height, v.limits.MinWidth, v.limits.MinHeight)
	}
	return meta, nil
}
