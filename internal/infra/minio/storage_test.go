package minio

import (
	"testing"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		split entity.Split
		local string
		want  string
	}{
		{entity.SplitTrain, "/data/sequences/npz/train/v_a1.seqz", "train/v_a1.seqz"},
		{entity.SplitTest, "npz/test/b.seqz", "test/b.seqz"},
		{entity.SplitTest, "c.seqz", "test/c.seqz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ObjectKey(tt.split, tt.local))
	}
}

func TestNewArchiveMirrorRejectsBadEndpoint(t *testing.T) {
	_, err := NewArchiveMirror(StorageConfig{Endpoint: "localhost:9000/bucket/path", Bucket: "b"})
	require.Error(t, err)
}
