package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"journal-backend/internal/model"
)

// JPEGQuality 所有送往模型的图片统一使用的压缩质量
const JPEGQuality = 75

var ErrImageDecode = errors.New("image decode failed")

// Decode 解析任意受支持格式的图片字节
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrImageDecode)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return img, nil
}

// Normalize 将图片转换为不透明三通道 JPEG。带透明度的图片先铺到白色底图上。
func Normalize(img image.Image) ([]byte, error) {
	var flat image.Image
	if hasAlpha(img) {
		b := img.Bounds()
		background := imaging.New(b.Dx(), b.Dy(), color.White)
		flat = imaging.Overlay(background, img, image.Pt(0, 0), 1.0)
	} else {
		flat = imaging.Clone(img)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// NewAsset 解码并规范化上传的图片
func NewAsset(data []byte) (*model.ImageAsset, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	encoded, err := Normalize(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &model.ImageAsset{
		Image:  img,
		Bytes:  encoded,
		Format: "jpeg",
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

type opaquer interface {
	Opaque() bool
}

func hasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return false
	}
	if o, ok := img.(opaquer); ok {
		return !o.Opaque()
	}
	return true
}
