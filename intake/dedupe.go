package intake

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// SHA256Hex returns the lowercase hex SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FindDuplicate looks up (tenant, sha256) in the upload repository. A hit
// means the bytes were already accepted; the caller must not write a new
// record. Two concurrent uploads of identical bytes resolve to the same
// row because the repository enforces a unique index on (tenant, sha256);
// the loser of that race reads the winner's row here.
func FindDuplicate(ctx context.Context, uploads repository.Uploads, tenantID, sha256hex string) (*model.Upload, error) {
	existing, err := uploads.FindByTenantSHA(ctx, tenantID, sha256hex)
	if err == repository.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return existing, nil
}
