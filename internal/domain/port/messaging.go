package port

import "context"

type EventPublisher interface {
	PublishCacheBuilt(ctx context.Context, msg []byte) error
}
