package repository

import (
	"context"
	"time"
)

// ViewCache stores rendered view-models per user. A miss returns found=false
// and no error.
//
// Get reports the user's cache generation at read time. Set only stores when
// that generation is still current, so a view computed before an Invalidate
// is dropped instead of being cached under the new generation.
type ViewCache interface {
	Get(ctx context.Context, userID, key string, dest interface{}) (gen int64, found bool, err error)
	Set(ctx context.Context, userID, key string, gen int64, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}
