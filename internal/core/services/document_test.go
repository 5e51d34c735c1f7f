package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/planroom/internal/core/domain"
)

type documentFixture struct {
	service *DocumentService
	docs    *memory.DocumentStore
	index   *memory.IndexStore
	uploads *memoryUploads
	opened  []string
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	f := &documentFixture{
		docs:    memory.NewDocumentStore(),
		index:   memory.NewIndexStore(),
		uploads: newMemoryUploads(),
	}
	f.service = NewDocumentService(f.docs, f.index, f.uploads, memory.NewResultCache(time.Hour))
	f.service.opener = func(path string) error {
		f.opened = append(f.opened, path)
		return nil
	}

	ingest := NewIngestService(&stubExtractors{}, pagePipeline{}, f.docs, f.index, f.uploads)
	for _, u := range []domain.Upload{
		{Filename: "spec.txt", Content: []byte("first page\fsecond page")},
		{Filename: "plan.txt", Content: []byte("ground floor")},
	} {
		_, err := ingest.Ingest(context.Background(), u)
		require.NoError(t, err)
	}
	return f
}

func TestDocumentService_List(t *testing.T) {
	f := newDocumentFixture(t)

	docs, err := f.service.List(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 2)
	names := []string{docs[0].Filename, docs[1].Filename}
	assert.ElementsMatch(t, []string{"spec.txt", "plan.txt"}, names)
}

func TestDocumentService_Get(t *testing.T) {
	f := newDocumentFixture(t)

	doc, err := f.service.Get(context.Background(), domain.DocumentID("spec.txt"))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.ChunkCount)

	_, err = f.service.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_GetContent(t *testing.T) {
	f := newDocumentFixture(t)
	id := domain.DocumentID("spec.txt")
	extra := chunk(id, "spec.txt", 2, 2, "more on page two")
	chunks, err := f.docs.GetChunks(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, f.docs.SaveChunks(context.Background(), append(chunks, extra)))

	content, err := f.service.GetContent(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "first page\n\nsecond page\nmore on page two", content)
}

func TestDocumentService_GetContent_NotFound(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.service.GetContent(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Delete(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	id := domain.DocumentID("spec.txt")

	require.NoError(t, f.service.Delete(ctx, id))

	_, err := f.docs.GetDocument(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	count, err := f.index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "only the other document's chunks remain")
	assert.Equal(t, []string{"/uploads/spec.txt"}, f.uploads.deleted)

	assert.ErrorIs(t, f.service.Delete(ctx, id), domain.ErrNotFound)
}

func TestDocumentService_Open(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Open(ctx, domain.DocumentID("plan.txt")))
	assert.Equal(t, []string{"/uploads/plan.txt"}, f.opened)

	assert.ErrorIs(t, f.service.Open(ctx, "missing"), domain.ErrNotFound)
}

func TestDocumentService_Open_NoStoredUpload(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	require.NoError(t, f.docs.SaveDocument(ctx, &domain.Document{ID: "bare", Filename: "bare.txt"}))

	err := f.service.Open(ctx, "bare")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.opened)
}

func TestDocumentService_Open_OpenerError(t *testing.T) {
	f := newDocumentFixture(t)
	f.service.opener = func(string) error { return errors.New("no viewer") }

	err := f.service.Open(context.Background(), domain.DocumentID("plan.txt"))

	assert.EqualError(t, err, "no viewer")
}

func TestDocumentService_Health(t *testing.T) {
	f := newDocumentFixture(t)

	health, err := f.service.Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 2, health.DocumentCount)
	assert.Equal(t, 3, health.ChunkCount)
	assert.Zero(t, health.CacheEntries)
}

func TestDocumentService_Health_DegradedCache(t *testing.T) {
	f := newDocumentFixture(t)
	f.service.cache = failingCache{}

	health, err := f.service.Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "degraded", health.Status)
}
