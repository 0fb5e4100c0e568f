package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ecfs/pkg/namespace"
	"github.com/marmos91/ecfs/pkg/namespace/store/memory"
)

func newPopulatedNamespace(t *testing.T) (*namespace.Namespace, *memory.Store) {
	t.Helper()
	ctx := context.Background()

	catalog, err := namespace.NewCatalog([]string{"RS-6-3-1024k", "RS-3-2-1024k"})
	require.NoError(t, err)
	store := memory.New()
	ns, err := namespace.New(ctx, store, catalog)
	require.NoError(t, err)

	require.NoError(t, ns.Mkdirs(ctx, "/data/cold"))
	require.NoError(t, ns.SetPolicy(ctx, "/data", "RS-3-2-1024k"))
	_, err = ns.CreateFile(ctx, "/data/cold/part-0")
	require.NoError(t, err)
	return ns, store
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	ns, store := newPopulatedNamespace(t)

	snap, err := Export(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, snap.Version)
	require.Len(t, snap.Entries, 4)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap))
	decoded, err := Read(&buf)
	require.NoError(t, err)

	target := memory.New()
	n, err := Import(ctx, target, ns.Catalog(), decoded)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	restored, err := namespace.New(ctx, target, ns.Catalog())
	require.NoError(t, err)

	p, err := restored.GetEffectivePolicy(ctx, "/data/cold")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "RS-3-2-1024k", p.Name)

	file, err := restored.Stat(ctx, "/data/cold/part-0")
	require.NoError(t, err)
	assert.Equal(t, namespace.EntryFile, file.Type)
	assert.Equal(t, "RS-3-2-1024k", file.Policy)
}

func TestImportKeepsDisabledPolicyOnFiles(t *testing.T) {
	ctx := context.Background()
	_, store := newPopulatedNamespace(t)

	snap, err := Export(ctx, store)
	require.NoError(t, err)

	// Only the default policy is enabled on the target.
	catalog, err := namespace.NewCatalog(nil)
	require.NoError(t, err)
	_, err = Import(ctx, memory.New(), catalog, snap)
	assert.NoError(t, err)
}

func TestSnapshotValidate(t *testing.T) {
	catalog, err := namespace.NewCatalog(nil)
	require.NoError(t, err)

	dir := func(p, policy string) *namespace.Entry {
		return &namespace.Entry{Path: p, Type: namespace.EntryDirectory, Policy: policy}
	}
	file := func(p string) *namespace.Entry {
		return &namespace.Entry{Path: p, Type: namespace.EntryFile}
	}

	tests := []struct {
		name    string
		snap    Snapshot
		wantErr string
	}{
		{"Valid", Snapshot{Version: 1, Entries: []*namespace.Entry{dir("/", ""), dir("/a", "RS-6-3-1024k"), file("/a/f")}}, ""},
		{"RootImplied", Snapshot{Version: 1, Entries: []*namespace.Entry{dir("/a", "")}}, ""},
		{"WrongVersion", Snapshot{Version: 7}, "unsupported snapshot version"},
		{"NilEntry", Snapshot{Version: 1, Entries: []*namespace.Entry{nil}}, "empty entry"},
		{"RelativePath", Snapshot{Version: 1, Entries: []*namespace.Entry{dir("a", "")}}, "not absolute"},
		{"UncleanPath", Snapshot{Version: 1, Entries: []*namespace.Entry{dir("/a/", "")}}, "not clean"},
		{"Duplicate", Snapshot{Version: 1, Entries: []*namespace.Entry{dir("/a", ""), dir("/a", "")}}, "duplicate entry"},
		{"UnknownType", Snapshot{Version: 1, Entries: []*namespace.Entry{{Path: "/a", Type: "LINK"}}}, "unknown type"},
		{"RootFile", Snapshot{Version: 1, Entries: []*namespace.Entry{file("/")}}, "root must be a directory"},
		{"UnknownPolicy", Snapshot{Version: 1, Entries: []*namespace.Entry{dir("/a", "RS-1-1-1k")}}, "unknown erasure coding policy"},
		{"Orphan", Snapshot{Version: 1, Entries: []*namespace.Entry{file("/a/f")}}, "no parent directory"},
		{"FileParent", Snapshot{Version: 1, Entries: []*namespace.Entry{file("/a"), file("/a/f")}}, "no parent directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate(catalog)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestImportRejectsInvalidSnapshot(t *testing.T) {
	catalog, err := namespace.NewCatalog(nil)
	require.NoError(t, err)
	store := memory.New()

	n, err := Import(context.Background(), store, catalog, &Snapshot{Version: 2})
	require.Error(t, err)
	assert.Zero(t, n)

	entries, err := store.List(context.Background(), namespace.Root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadInvalid(t *testing.T) {
	_, err := Read(strings.NewReader("{not json"))
	assert.Error(t, err)
}

// fakeS3 keeps objects in memory.
type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3UploadDownload(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{objects: map[string][]byte{}}

	snap := &Snapshot{
		Version:   FormatVersion,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Entries:   []*namespace.Entry{{Path: "/", Type: namespace.EntryDirectory, Policy: "RS-6-3-1024k"}},
	}
	require.NoError(t, Upload(ctx, client, "backups", "ecfs/ns.json", snap))
	assert.Contains(t, client.objects, "backups/ecfs/ns.json")

	got, err := Download(ctx, client, "backups", "ecfs/ns.json")
	require.NoError(t, err)
	assert.Equal(t, snap.CreatedAt, got.CreatedAt)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "RS-6-3-1024k", got.Entries[0].Policy)

	_, err = Download(ctx, client, "backups", "missing.json")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestS3UploadError(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}, putErr: errors.New("access denied")}
	err := Upload(context.Background(), client, "b", "k", &Snapshot{Version: FormatVersion})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewS3Client(t *testing.T) {
	client, err := NewS3Client(context.Background(), S3Config{
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
