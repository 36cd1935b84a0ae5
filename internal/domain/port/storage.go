package port

import (
	"context"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
)

// ArchiveMirror copies written cache archives to remote storage.
type ArchiveMirror interface {
	MirrorArchive(ctx context.Context, split entity.Split, localPath string) error
}
