// README: Proof-capture collaborator; mints photo URLs for pickup/delivery evidence.
package proof

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"swiftdrop/internal/modules/order"
	"swiftdrop/internal/types"
)

// Uploader stores a captured proof photo and returns its URL. The engine only
// records that the URL exists; it never inspects the image.
type Uploader interface {
	Upload(ctx context.Context, orderID types.ID, kind order.ProofKind) (string, error)
}

// LocalUploader simulates an object store by minting stable URLs under a base
// path. A real deployment swaps in S3/GCS.
type LocalUploader struct {
	baseURL string
}

func NewLocalUploader(baseURL string) *LocalUploader {
	return &LocalUploader{baseURL: strings.TrimRight(baseURL, "/")}
}

func (u *LocalUploader) Upload(_ context.Context, orderID types.ID, kind order.ProofKind) (string, error) {
	switch kind {
	case order.ProofPickup, order.ProofDelivery:
	default:
		return "", fmt.Errorf("unknown proof kind %q", kind)
	}
	return fmt.Sprintf("%s/proofs/%s/%s-%s.jpg", u.baseURL, orderID, kind, uuid.NewString()), nil
}
