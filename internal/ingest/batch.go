package ingest

import (
	"context"

	"github.com/jengzang/geolife-backend-go/internal/models"
	"github.com/jengzang/geolife-backend-go/internal/repository"
)

// batcher buffers walker output and bulk-inserts it once the buffered
// trackpoints reach the batch size
type batcher struct {
	store repository.Store
	size  int

	users      []models.User
	activities []models.Activity
	points     []models.TrackPoint
	flushes    int
}

func newBatcher(store repository.Store, size int) *batcher {
	return &batcher{store: store, size: size}
}

// Activity implements geolife.Sink
func (b *batcher) Activity(ctx context.Context, activity models.Activity, points []models.TrackPoint) error {
	b.activities = append(b.activities, activity)
	b.points = append(b.points, points...)
	if len(b.points) >= b.size {
		return b.flush(ctx)
	}
	return nil
}

// User implements geolife.Sink
func (b *batcher) User(ctx context.Context, user models.User) error {
	b.users = append(b.users, user)
	if len(b.users) >= b.size {
		return b.flush(ctx)
	}
	return nil
}

// flush writes everything buffered; activities go before their points and
// users, which only arrive once their subtree is complete
func (b *batcher) flush(ctx context.Context) error {
	if len(b.users)+len(b.activities)+len(b.points) == 0 {
		return nil
	}
	if err := b.store.InsertActivities(ctx, b.activities); err != nil {
		return err
	}
	if err := b.store.InsertTrackPoints(ctx, b.points); err != nil {
		return err
	}
	if err := b.store.InsertUsers(ctx, b.users); err != nil {
		return err
	}

	b.users = b.users[:0]
	b.activities = b.activities[:0]
	b.points = b.points[:0]
	b.flushes++
	return nil
}
