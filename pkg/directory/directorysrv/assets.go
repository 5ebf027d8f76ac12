package directorysrv

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/Abraxas-365/staffhub/pkg/fsx"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// AssetStore is the part of fsx.Uploader provisioning uses.
type AssetStore interface {
	Upload(ctx context.Context, kind fsx.BucketKind, data []byte, name, mimeType string) error
	Remove(ctx context.Context, kind fsx.BucketKind, name string) error
	URL(kind fsx.BucketKind, name string) string
}

// QREncoder renders payload as a PNG image.
type QREncoder func(payload string) ([]byte, error)

const qrSize = 256

// EncodeQR is the default QREncoder.
func EncodeQR(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, qrSize)
}

const shiftCodeLength = 6

func newShiftCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:shiftCodeLength]
}

// TempPassword returns n random digits; the first is never zero.
func TempPassword(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		lo, span := int64(0), int64(10)
		if i == 0 {
			lo, span = 1, 9
		}
		d, err := rand.Int(rand.Reader, big.NewInt(span))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + lo + d.Int64()))
	}
	return b.String(), nil
}
