package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "kali/internal/errors"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestAssetPath(t *testing.T) {
	html := []byte("<!DOCTYPE html><html><body><script>alert(document.cookie)</script></body></html>")
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)

	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
		wantErr  error
	}{
		{name: "recognized suffix", filename: "me.PNG", data: []byte("x"), want: "user_images/u1.png"},
		{name: "jpeg", filename: "holiday.photo.jpeg", data: []byte("x"), want: "user_images/u1.jpeg"},
		{name: "traversal in name", filename: "../../etc/passwd.png", data: []byte("x"), want: "user_images/u1.png"},
		{name: "windows separators", filename: `C:\Users\me\pic.gif`, data: []byte("x"), want: "user_images/u1.gif"},
		{name: "separator in suffix", filename: "evil.png/..", data: pngHeader, want: "user_images/u1.png"},
		{name: "unrecognized suffix sniffed", filename: "avatar.exe", data: pngHeader, want: "user_images/u1.png"},
		{name: "no suffix sniffed", filename: "avatar", data: pngHeader, want: "user_images/u1.png"},
		{name: "html content is rejected", filename: "avatar.exe", data: html, wantErr: apperrors.ErrUnsupportedMedia},
		{name: "html suffix is rejected", filename: "avatar.html", data: html, wantErr: apperrors.ErrUnsupportedMedia},
		{name: "svg suffix is rejected", filename: "a.svg", data: svg, wantErr: apperrors.ErrUnsupportedMedia},
		{name: "unknown bytes are rejected", filename: "avatar", data: []byte{0x00, 0x01, 0x02}, wantErr: apperrors.ErrUnsupportedMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AssetPath("u1", tt.filename, tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("user_images/u1.png"))
	assert.Equal(t, "image/jpeg", ContentType("user_images/u1.JPG"))
	assert.Equal(t, "application/octet-stream", ContentType("user_images/u1.html"))
	assert.Equal(t, "application/octet-stream", ContentType("user_images/u1"))
}

func TestCleanKey(t *testing.T) {
	for _, bad := range []string{"", "/etc/passwd", "..", "../x", "user_images/../../x", `user_images\x.png`, "."} {
		_, err := cleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
	got, err := cleanKey("user_images/./u1.png")
	require.NoError(t, err)
	assert.Equal(t, "user_images/u1.png", got)
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	exists, err := store.Exists(ctx, "user_images/u1.png")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Write(ctx, "user_images/u1.png", []byte("img")))

	data, err := os.ReadFile(filepath.Join(root, "user_images", "u1.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)

	exists, err = store.Exists(ctx, "user_images/u1.png")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "user_images/u1.png"))
	exists, err = store.Exists(ctx, "user_images/u1.png")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, store.Delete(ctx, "user_images/u1.png"), "deleting a missing asset is not an error")
}

func TestLocalStore_RejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, store.Write(context.Background(), "../outside.png", []byte("x")), ErrInvalidPath)
	assert.ErrorIs(t, store.Delete(context.Background(), "/etc/passwd"), ErrInvalidPath)
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func (m *mockS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.HeadObjectOutput{}, args.Error(0)
}

func keyIs(key string) interface{} {
	return mock.MatchedBy(func(in interface{}) bool {
		switch v := in.(type) {
		case *s3.PutObjectInput:
			return *v.Key == key && *v.Bucket == "assets" && *v.ContentType == ContentType(key)
		case *s3.DeleteObjectInput:
			return *v.Key == key && *v.Bucket == "assets"
		case *s3.HeadObjectInput:
			return *v.Key == key && *v.Bucket == "assets"
		}
		return false
	})
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	client := new(mockS3)
	store := &S3Store{client: client, bucket: "assets"}

	client.On("PutObject", ctx, keyIs("user_images/u1.png")).Return(nil)
	client.On("HeadObject", ctx, keyIs("user_images/u1.png")).Return(nil)
	client.On("HeadObject", ctx, keyIs("user_images/u2.png")).Return(&types.NotFound{})
	client.On("HeadObject", ctx, keyIs("user_images/u3.png")).Return(errors.New("throttled"))
	client.On("DeleteObject", ctx, keyIs("user_images/u1.png")).Return(nil)

	require.NoError(t, store.Write(ctx, "user_images/u1.png", pngHeader))

	exists, err := store.Exists(ctx, "user_images/u1.png")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "user_images/u2.png")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Exists(ctx, "user_images/u3.png")
	assert.Error(t, err)

	require.NoError(t, store.Delete(ctx, "user_images/u1.png"))
	assert.ErrorIs(t, store.Write(ctx, "../x", nil), ErrInvalidPath)

	client.AssertExpectations(t)
}
