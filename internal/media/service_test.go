package media

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/parquesmx/backend/internal/models"
)

type fakeFileStore struct {
	byHash  map[string]*models.MediaFile
	created int
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{byHash: make(map[string]*models.MediaFile)}
}

func (f *fakeFileStore) Create(_ context.Context, m *models.MediaFile) error {
	m.ID = uuid.New()
	f.byHash[m.ContentHash] = m
	f.created++
	return nil
}

func (f *fakeFileStore) FindByHash(_ context.Context, hash string) (*models.MediaFile, error) {
	return f.byHash[hash], nil
}

type fakeObjectStore struct {
	uploads int
}

func (f *fakeObjectStore) Upload(_ context.Context, key, _ string, _ io.Reader) (string, error) {
	f.uploads++
	return "https://bucket.example.com/" + key, nil
}

func TestRegisterDeduplicatesByContent(t *testing.T) {
	require := require.New(t)
	repo := newFakeFileStore()
	objects := &fakeObjectStore{}
	store := NewStore(repo, objects, 50*1024*1024, nil)

	body := "the same creative bytes"
	first, err := store.Register(context.Background(), Upload{
		Filename: "banner.png", MimeType: "image/png",
		Size: int64(len(body)), Body: strings.NewReader(body),
	})
	require.NoError(err)
	require.NotNil(first)

	// Same bytes under a different filename yield the existing record.
	second, err := store.Register(context.Background(), Upload{
		Filename: "other-name.png", MimeType: "image/png",
		Size: int64(len(body)), Body: strings.NewReader(body),
	})
	require.NoError(err)
	require.Equal(first.ID, second.ID)
	require.Equal(1, repo.created)
	require.Equal(1, objects.uploads)
}

func TestRegisterRejectsUnsupportedType(t *testing.T) {
	require := require.New(t)
	store := NewStore(newFakeFileStore(), &fakeObjectStore{}, 1024, nil)

	_, err := store.Register(context.Background(), Upload{
		Filename: "malware.exe", MimeType: "application/octet-stream",
		Size: 10, Body: strings.NewReader("0123456789"),
	})
	require.ErrorIs(err, ErrUnsupportedMediaType)
}

func TestRegisterRejectsOversizedUpload(t *testing.T) {
	require := require.New(t)
	store := NewStore(newFakeFileStore(), &fakeObjectStore{}, 8, nil)

	_, err := store.Register(context.Background(), Upload{
		Filename: "big.png", MimeType: "image/png",
		Size: 9, Body: strings.NewReader("123456789"),
	})
	require.ErrorIs(err, ErrPayloadTooLarge)
}

func TestRegisterInfersTypeFromFilename(t *testing.T) {
	require := require.New(t)
	repo := newFakeFileStore()
	store := NewStore(repo, &fakeObjectStore{}, 1024, nil)

	// Browsers sometimes send a generic content type; the extension decides.
	file, err := store.Register(context.Background(), Upload{
		Filename: "clip.webm", MimeType: "",
		Size: 4, Body: strings.NewReader("webm"),
	})
	require.NoError(err)
	require.Equal("video/webm", file.MimeType)
	require.Equal(models.MediaTypeVideo, file.MediaType)
}
