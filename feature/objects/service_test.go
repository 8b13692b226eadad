package objects

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud-storage/core/storage"
	"cloud-storage/core/storage/mocks"
	"cloud-storage/core/table"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBucket = "test-bucket"

// newMemoryService returns a service over an in-memory bucket seeded with objects.
func newMemoryService(t *testing.T, objects map[string]string) (*Service, *storage.MemoryClient) {
	t.Helper()
	client := storage.NewMemoryClient()
	for key, body := range objects {
		require.NoError(t, client.PutObject(context.Background(), testBucket, key, strings.NewReader(body), int64(len(body))))
	}
	svc, err := NewService(client, testBucket, zap.NewNop(), nil)
	require.NoError(t, err)
	return svc, client
}

func newMockService(t *testing.T) (*Service, *mocks.Client) {
	t.Helper()
	client := new(mocks.Client)
	svc, err := NewService(client, testBucket, zap.NewNop(), nil)
	require.NoError(t, err)
	return svc, client
}

func TestNewService(t *testing.T) {
	_, err := NewService(nil, testBucket, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, storage.ErrNotInitialized)
}

func TestOpen_UnknownProvider(t *testing.T) {
	_, err := Open(storage.Config{Provider: "ftp"}, zap.NewNop(), nil)
	require.Error(t, err)
	assert.Equal(t, ErrConfig, KindOf(err))
}

func TestBucket(t *testing.T) {
	svc, client := newMockService(t)

	b, err := svc.Bucket("other")
	require.NoError(t, err)
	assert.Equal(t, "other", b.Name)

	b, err = svc.Bucket("")
	require.NoError(t, err)
	assert.Equal(t, testBucket, b.Name)

	noDefault, err := NewService(client, "", zap.NewNop(), nil)
	require.NoError(t, err)
	_, err = noDefault.Bucket("")
	assert.ErrorIs(t, err, ErrArgument)

	// Handles are lazy.
	client.AssertExpectations(t)
	assert.Empty(t, client.Calls)
}

func TestKeyPathAvailable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t, map[string]string{"data/x.csv": "a\n1\n"})

	ok, err := svc.KeyPathAvailable(ctx, testBucket, "data/")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.KeyPathAvailable(ctx, testBucket, "models/")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyPathAvailable_TransportError(t *testing.T) {
	svc, client := newMockService(t)
	client.On("ListObjects", mock.Anything, testBucket, "data/").Return(nil, errors.New("dial tcp: connection refused"))

	_, err := svc.KeyPathAvailable(context.Background(), "", "data/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestFileObject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t, map[string]string{
		"models/model.pkl":   "m",
		"data/train.csv":     "t",
		"data/train.csv.bak": "b",
	})

	t.Run("Single", func(t *testing.T) {
		match, err := svc.FileObject(ctx, "models/model.pkl", testBucket)
		require.NoError(t, err)
		single, ok := match.(Single)
		require.True(t, ok)
		assert.Equal(t, "models/model.pkl", single.Object.Key)
		assert.Equal(t, testBucket, single.Object.Bucket)
		assert.True(t, single.Object.Resolved())
	})

	t.Run("SeveralMatches", func(t *testing.T) {
		match, err := svc.FileObject(ctx, "data/train.csv", testBucket)
		require.NoError(t, err)
		multiple, ok := match.(Multiple)
		require.True(t, ok)
		assert.Len(t, multiple.Objects, 2)
	})

	t.Run("NoMatch", func(t *testing.T) {
		match, err := svc.FileObject(ctx, "missing", testBucket)
		require.NoError(t, err)
		multiple, ok := match.(Multiple)
		require.True(t, ok)
		assert.Empty(t, multiple.Objects)
	})
}

func TestReadObject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t, map[string]string{
		"notes.txt": "héllo",
		"blob.bin":  "\xff\xfe",
	})
	b, err := svc.Bucket("")
	require.NoError(t, err)
	refs, err := b.Objects(ctx, "notes.txt")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	ref := refs[0]

	t.Run("Raw", func(t *testing.T) {
		content, err := svc.ReadObject(ctx, ref, false, false)
		require.NoError(t, err)
		assert.Equal(t, Raw("héllo"), content)
	})

	t.Run("Text", func(t *testing.T) {
		content, err := svc.ReadObject(ctx, ref, true, false)
		require.NoError(t, err)
		assert.Equal(t, Text("héllo"), content)
	})

	t.Run("Stream", func(t *testing.T) {
		content, err := svc.ReadObject(ctx, ref, true, true)
		require.NoError(t, err)
		stream, ok := content.(Stream)
		require.True(t, ok)

		var buf bytes.Buffer
		_, err = buf.ReadFrom(stream)
		require.NoError(t, err)
		assert.Equal(t, "héllo", buf.String())
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		_, err := svc.ReadObject(ctx, b.Object("blob.bin"), true, false)
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("MissingObject", func(t *testing.T) {
		_, err := svc.ReadObject(ctx, b.Object("gone.txt"), false, false)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReadObject_UnresolvedRef(t *testing.T) {
	svc, client := newMockService(t)

	for _, ref := range []ObjectRef{{}, {Bucket: testBucket, Key: "models/model.pkl"}} {
		_, err := svc.ReadObject(context.Background(), ref, true, true)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrArgument)
	}
	assert.Empty(t, client.Calls)
}

func TestModelKey(t *testing.T) {
	assert.Equal(t, "models/m.pkl", ModelKey("m.pkl", "models"))
	assert.Equal(t, "m.pkl", ModelKey("m.pkl", ""))
}

type testModel struct {
	Name    string
	Weights []float64
	Labels  map[string]int
}

func TestLoadModel(t *testing.T) {
	ctx := context.Background()
	want := testModel{Name: "clf", Weights: []float64{0.5, -1.25}, Labels: map[string]int{"spam": 1, "ham": 0}}

	for _, name := range []string{"m.pkl", "m.cbor"} {
		t.Run(name, func(t *testing.T) {
			svc, _ := newMemoryService(t, nil)
			require.NoError(t, svc.SaveModel(ctx, want, name, testBucket, "models"))

			var got testModel
			require.NoError(t, svc.LoadModel(ctx, name, testBucket, "models", &got))
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadModel_NoDirectory(t *testing.T) {
	ctx := context.Background()
	svc, client := newMemoryService(t, nil)
	require.NoError(t, svc.SaveModel(ctx, testModel{Name: "root"}, "m.pkl", testBucket, ""))

	_, err := client.StatObject(ctx, testBucket, "m.pkl")
	require.NoError(t, err)

	var got testModel
	require.NoError(t, svc.LoadModel(ctx, "m.pkl", testBucket, "", &got))
	assert.Equal(t, "root", got.Name)
}

func TestLoadModel_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t, map[string]string{
		"models/broken.pkl": "not a gob stream",
		"models/a.pkl":      "1",
		"models/a.pkl.v2":   "2",
	})

	var out testModel
	assert.ErrorIs(t, svc.LoadModel(ctx, "missing.pkl", testBucket, "models", &out), ErrNotFound)
	assert.ErrorIs(t, svc.LoadModel(ctx, "a.pkl", testBucket, "models", &out), ErrNotFound)
	assert.ErrorIs(t, svc.LoadModel(ctx, "broken.pkl", testBucket, "models", &out), ErrSerialization)
}

func TestCreateFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("Idempotent", func(t *testing.T) {
		svc, client := newMemoryService(t, map[string]string{"keep": "x"})

		created, err := svc.EnsureFolder(ctx, "data", testBucket)
		require.NoError(t, err)
		assert.True(t, created)
		created, err = svc.EnsureFolder(ctx, "data/", testBucket)
		require.NoError(t, err)
		assert.False(t, created)
		require.NoError(t, svc.CreateFolder(ctx, "data", testBucket))

		infos, err := client.ListObjects(ctx, testBucket, "data")
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, "data/", infos[0].Key)
		assert.Zero(t, infos[0].Size)
	})

	t.Run("CreatesOnlyOnNotFound", func(t *testing.T) {
		svc, client := newMockService(t)
		client.On("StatObject", mock.Anything, testBucket, "models/").
			Return(storage.ObjectInfo{}, storage.ErrObjectNotFound).Once()
		client.On("PutObject", mock.Anything, testBucket, "models/", mock.Anything, int64(0)).Return(nil).Once()

		require.NoError(t, svc.CreateFolder(ctx, "models", ""))
		client.AssertExpectations(t)
	})

	t.Run("ProbeErrorIsReturned", func(t *testing.T) {
		svc, client := newMockService(t)
		client.On("StatObject", mock.Anything, testBucket, "models/").
			Return(storage.ObjectInfo{}, errors.New("403 access denied"))

		err := svc.CreateFolder(ctx, "models", testBucket)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransport)
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("EmptyName", func(t *testing.T) {
		svc, client := newMockService(t)
		assert.ErrorIs(t, svc.CreateFolder(ctx, "/", testBucket), ErrArgument)
		assert.Empty(t, client.Calls)
	})
}

func TestCreateFolders(t *testing.T) {
	ctx := context.Background()
	svc, client := newMockService(t)
	client.On("StatObject", mock.Anything, testBucket, "ok/").Return(storage.ObjectInfo{Key: "ok/"}, nil)
	client.On("StatObject", mock.Anything, testBucket, "bad/").Return(storage.ObjectInfo{}, errors.New("timeout"))
	client.On("StatObject", mock.Anything, testBucket, "new/").Return(storage.ObjectInfo{}, storage.ErrObjectNotFound)
	client.On("PutObject", mock.Anything, testBucket, "new/", mock.Anything, int64(0)).Return(errors.New("quota exceeded"))

	err := svc.CreateFolders(ctx, testBucket, "ok", "bad", "new")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestUploadFile(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesLocalCopy", func(t *testing.T) {
		svc, client := newMemoryService(t, nil)
		local := writeTemp(t, "a.txt", "hello")

		require.NoError(t, svc.UploadFile(ctx, local, "uploads/a.txt", testBucket, true))

		info, err := client.StatObject(ctx, testBucket, "uploads/a.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(5), info.Size)
		_, err = os.Stat(local)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("KeepsLocalCopy", func(t *testing.T) {
		svc, _ := newMemoryService(t, nil)
		local := writeTemp(t, "b.txt", "hello")

		require.NoError(t, svc.UploadFile(ctx, local, "uploads/b.txt", testBucket, false))
		_, err := os.Stat(local)
		assert.NoError(t, err)
	})

	t.Run("MissingLocalFile", func(t *testing.T) {
		svc, _ := newMemoryService(t, nil)
		err := svc.UploadFile(ctx, filepath.Join(t.TempDir(), "nope"), "k", testBucket, true)
		assert.ErrorIs(t, err, ErrLocal)
	})

	t.Run("UploadFailureKeepsLocalCopy", func(t *testing.T) {
		svc, client := newMockService(t)
		local := writeTemp(t, "c.txt", "hello")
		client.On("UploadFile", mock.Anything, testBucket, "c.txt", local).
			Return(storage.ObjectInfo{}, errors.New("connection reset"))

		err := svc.UploadFile(ctx, local, "c.txt", testBucket, true)
		assert.ErrorIs(t, err, ErrTransport)
		_, statErr := os.Stat(local)
		assert.NoError(t, statErr)
	})

	t.Run("MissingArguments", func(t *testing.T) {
		svc, client := newMockService(t)
		assert.ErrorIs(t, svc.UploadFile(ctx, "", "k", testBucket, false), ErrArgument)
		assert.Empty(t, client.Calls)
	})
}

func TestUploadTableAsCSV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, client := newMemoryService(t, nil)

	src, err := table.ReadCSV(strings.NewReader("id,name,score\n1,alice,1.5\n2,na,\n3,carol,3\n"))
	require.NoError(t, err)
	defer src.Release()

	local := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, svc.UploadTableAsCSV(ctx, src, local, "data/out.csv", testBucket))

	_, err = os.Stat(local)
	assert.True(t, os.IsNotExist(err), "local CSV should be removed after upload")

	body, err := client.GetObject(ctx, testBucket, "data/out.csv")
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "id,name,score\n"))
	assert.Contains(t, buf.String(), "2,na,na")

	got, err := svc.ReadCSV(ctx, "data/out.csv", testBucket)
	require.NoError(t, err)
	defer got.Release()

	assert.Equal(t, src.Columns(), got.Columns())
	assert.Equal(t, src.Rows(), got.Rows())
	assert.True(t, got.IsMissing(1, 1))
	assert.True(t, got.IsMissing(1, 2))
}

func TestUploadTableAsCSV_ZeroRows(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t, nil)

	src, err := table.ReadCSV(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	defer src.Release()

	local := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, svc.UploadTableAsCSV(ctx, src, local, "data/empty.csv", testBucket))

	got, err := svc.ReadCSV(ctx, "data/empty.csv", testBucket)
	require.NoError(t, err)
	defer got.Release()

	assert.Equal(t, []string{"a", "b"}, got.Columns())
	assert.Equal(t, 0, got.NumRows())
}

func TestUploadTableAsCSV_MixedValues(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t, nil)

	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "score", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "code", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "count", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Float64Builder).AppendValues([]float64{1.0, 2.5, 0}, []bool{true, true, false})
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"1", "x", ""}, []bool{true, true, false})
	b.Field(2).(*array.Int64Builder).AppendValues([]int64{1, 0, 3}, []bool{true, false, true})
	rec := b.NewRecordBatch()
	defer rec.Release()
	src := table.New(rec)
	defer src.Release()

	local := filepath.Join(t.TempDir(), "mixed.csv")
	require.NoError(t, svc.UploadTableAsCSV(ctx, src, local, "data/mixed.csv", testBucket))

	got, err := svc.ReadCSV(ctx, "data/mixed.csv", testBucket)
	require.NoError(t, err)
	defer got.Release()

	assert.Equal(t, src.Columns(), got.Columns())
	assert.Equal(t, src.Rows(), got.Rows())
	assert.True(t, schema.Equal(got.Record().Schema()), "got schema %s", got.Record().Schema())
}

func TestReadCSV_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t, map[string]string{
		"data/a.csv":     "x\n1\n",
		"data/a.csv.old": "x\n0\n",
		"data/bad.csv":   "x,y\n1\n",
	})

	_, err := svc.ReadCSV(ctx, "data/a.csv", testBucket)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ReadCSV(ctx, "data/none.csv", testBucket)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ReadCSV(ctx, "data/bad.csv", testBucket)
	assert.ErrorIs(t, err, ErrParse)
}

func TestUploadTableAsCSV_NilTable(t *testing.T) {
	svc, client := newMockService(t)
	err := svc.UploadTableAsCSV(context.Background(), nil, "x.csv", "x.csv", testBucket)
	assert.ErrorIs(t, err, ErrArgument)
	assert.Empty(t, client.Calls)
}
