package manifest

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data_file.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newStore(path string, min, max int) *Store {
	return NewStore(StoreConfig{Path: path, MinSeqLength: min, MaxSeqLength: max}, zap.NewNop())
}

const sampleManifest = `train,walk,v_walk_01,45
train,run,v_run_01,40
test,walk,v_walk_02,300
train,jump,v_jump_01,12
test,run,v_run_02,301
train,walk,v_walk_03,120
`

func TestLoadMissingManifest(t *testing.T) {
	s := newStore(filepath.Join(t.TempDir(), "nope.csv"), 40, 300)
	err := s.Load()
	assert.ErrorIs(t, err, entity.ErrManifestMissing)
}

func TestLoadCorruptManifest(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too few fields", "train,walk,v1\n"},
		{"too many fields", "train,walk,v1,40,extra\n"},
		{"non integer count", "train,walk,v1,forty\n"},
		{"negative count", "train,walk,v1,-1\n"},
		{"unknown split", "val,walk,v1,40\n"},
		{"empty class", "train,,v1,40\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(writeManifest(t, tt.content), 40, 300)
			err := s.Load()
			assert.ErrorIs(t, err, entity.ErrManifestCorrupt)
		})
	}
}

func TestClassesSortedAndDeduplicated(t *testing.T) {
	s := newStore(writeManifest(t, sampleManifest), 40, 300)
	require.NoError(t, s.Load())

	classes := s.Classes()
	assert.Equal(t, []string{"jump", "run", "walk"}, classes)
	assert.True(t, sort.StringsAreSorted(classes))
}

func TestFilteredBoundsInclusive(t *testing.T) {
	s := newStore(writeManifest(t, sampleManifest), 40, 300)
	require.NoError(t, s.Load())

	var ids []string
	for _, r := range s.Filtered() {
		ids = append(ids, r.SampleID)
	}
	assert.Equal(t, []string{"v_walk_01", "v_run_01", "v_walk_02", "v_walk_03"}, ids)
	assert.Len(t, s.Records(), 6)
}

func TestSplitPartitionsFiltered(t *testing.T) {
	s := newStore(writeManifest(t, sampleManifest), 40, 300)
	require.NoError(t, s.Load())

	train := s.Split(entity.SplitTrain)
	test := s.Split(entity.SplitTest)
	assert.Len(t, train, 3)
	assert.Len(t, test, 1)
	assert.Equal(t, "v_walk_02", test[0].SampleID)
}

func TestOneHot(t *testing.T) {
	s := newStore(writeManifest(t, sampleManifest), 40, 300)
	require.NoError(t, s.Load())

	a, err := s.OneHot("run")
	require.NoError(t, err)
	b, err := s.OneHot("run")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, a)
	assert.Equal(t, a, b)

	// jump is only present on a filtered-out record but still in the vocabulary.
	j, err := s.OneHot("jump")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, j)

	_, err = s.OneHot("swim")
	assert.ErrorIs(t, err, entity.ErrUnknownClass)
}

func TestAppendAndPersistCreatesAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data_file.csv")
	s := newStore(path, 1, 100)

	require.NoError(t, s.AppendAndPersist([]entity.SampleRecord{
		{Split: entity.SplitTrain, Class: "a", SampleID: "v1", FrameCount: 10},
		{Split: entity.SplitTest, Class: "b", SampleID: "v2", FrameCount: 20},
	}))
	require.NoError(t, s.AppendAndPersist([]entity.SampleRecord{
		{Split: entity.SplitTrain, Class: "a", SampleID: "v1", FrameCount: 11},
		{Split: entity.SplitTrain, Class: "c", SampleID: "v3", FrameCount: 30},
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "train,a,v1,11\ntest,b,v2,20\ntrain,c,v3,30\n", string(raw))

	// vocabulary is a load-time snapshot
	assert.Empty(t, s.Classes())

	reloaded := newStore(path, 1, 100)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, []string{"a", "b", "c"}, reloaded.Classes())
	assert.Equal(t, s.Records(), reloaded.Records())
}

func TestAppendAndPersistKeepsRowsOnDisk(t *testing.T) {
	path := writeManifest(t, "train,a,v1,50\ntest,b,v2,60\n")

	// never loaded
	s := newStore(path, 1, 100)
	require.NoError(t, s.AppendAndPersist([]entity.SampleRecord{
		{Split: entity.SplitTrain, Class: "c", SampleID: "v3", FrameCount: 70},
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "train,a,v1,50\ntest,b,v2,60\ntrain,c,v3,70\n", string(raw))
	assert.Len(t, s.Records(), 3)
}

func TestAppendAndPersistSeesOtherWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_file.csv")
	first := newStore(path, 1, 100)
	second := newStore(path, 1, 100)

	require.NoError(t, first.AppendAndPersist([]entity.SampleRecord{
		{Split: entity.SplitTrain, Class: "a", SampleID: "v1", FrameCount: 10},
	}))
	require.NoError(t, second.AppendAndPersist([]entity.SampleRecord{
		{Split: entity.SplitTest, Class: "b", SampleID: "v2", FrameCount: 20},
	}))

	reloaded := newStore(path, 1, 100)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, []entity.SampleRecord{
		{Split: entity.SplitTrain, Class: "a", SampleID: "v1", FrameCount: 10},
		{Split: entity.SplitTest, Class: "b", SampleID: "v2", FrameCount: 20},
	}, reloaded.Records())
}

func TestAppendAndPersistRefusesCorruptManifest(t *testing.T) {
	path := writeManifest(t, "train,a,v1,fifty\n")
	s := newStore(path, 1, 100)

	err := s.AppendAndPersist([]entity.SampleRecord{
		{Split: entity.SplitTrain, Class: "c", SampleID: "v3", FrameCount: 70},
	})
	require.ErrorIs(t, err, entity.ErrManifestCorrupt)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "train,a,v1,fifty\n", string(raw))
}

func genRecords(t *rapid.T) []entity.SampleRecord {
	n := rapid.IntRange(0, 40).Draw(t, "n")
	records := make([]entity.SampleRecord, n)
	for i := range records {
		records[i] = entity.SampleRecord{
			Split:      rapid.SampledFrom(entity.Splits).Draw(t, "split"),
			Class:      rapid.SampledFrom([]string{"a", "b", "c", "d"}).Draw(t, "class"),
			SampleID:   rapid.StringMatching(`v[0-9]{1,4}`).Draw(t, "id"),
			FrameCount: rapid.IntRange(0, 120).Draw(t, "frames"),
		}
	}
	return records
}

func TestFilteredAndSplitProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		min := rapid.IntRange(0, 60).Draw(t, "min")
		max := rapid.IntRange(min, 120).Draw(t, "max")
		records := genRecords(t)

		s := &Store{minLen: min, maxLen: max, logger: zap.NewNop(), records: records, vocab: NewVocabulary(records)}

		filtered := s.Filtered()
		want := 0
		for _, r := range records {
			if min <= r.FrameCount && r.FrameCount <= max {
				want++
			}
		}
		if len(filtered) != want {
			t.Fatalf("filtered has %d records, want %d", len(filtered), want)
		}
		for _, r := range filtered {
			if r.FrameCount < min || r.FrameCount > max {
				t.Fatalf("record %+v outside [%d,%d]", r, min, max)
			}
		}

		train := s.Split(entity.SplitTrain)
		test := s.Split(entity.SplitTest)
		if len(train)+len(test) != len(filtered) {
			t.Fatalf("partitions %d+%d do not cover %d", len(train), len(test), len(filtered))
		}
		for _, r := range train {
			if r.Split != entity.SplitTrain {
				t.Fatalf("test record in train partition: %+v", r)
			}
		}
		for _, r := range test {
			if r.Split != entity.SplitTest {
				t.Fatalf("train record in test partition: %+v", r)
			}
		}

		classes := s.Classes()
		if !sort.StringsAreSorted(classes) {
			t.Fatalf("classes not sorted: %v", classes)
		}
		for i := 1; i < len(classes); i++ {
			if classes[i] == classes[i-1] {
				t.Fatalf("duplicate class %q", classes[i])
			}
		}
	})
}
