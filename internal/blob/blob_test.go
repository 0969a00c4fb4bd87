package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateKey(t *testing.T) {
	valid := []string{"abc.jpg", "0f9c2e1a-1b2c-4d5e-8f90-123456789abc.png", "noext"}
	for _, k := range valid {
		if err := ValidateKey(k); err != nil {
			t.Errorf("ValidateKey(%q) = %v", k, err)
		}
	}

	invalid := []string{"", ".", "..", "../etc/passwd", "a/b.jpg", `a\b.jpg`}
	for _, k := range invalid {
		if err := ValidateKey(k); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ValidateKey(%q) = %v, want ErrInvalidKey", k, err)
		}
	}
}

func TestLocalStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocal(root)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	ctx := context.Background()
	data := []byte("not really a jpeg")

	t.Run("Put and Open", func(t *testing.T) {
		if err := store.Put(ctx, "photo.jpg", bytes.NewReader(data), int64(len(data)), "image/jpeg"); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		rc, info, err := store.Open(ctx, "photo.jpg")
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer rc.Close()

		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("content = %q", got)
		}
		if info.Size != int64(len(data)) || info.ContentType != "image/jpeg" {
			t.Errorf("info = %+v", info)
		}
	})

	t.Run("size mismatch leaves nothing behind", func(t *testing.T) {
		err := store.Put(ctx, "short.jpg", bytes.NewReader(data), 999, "image/jpeg")
		if err == nil {
			t.Fatal("expected size mismatch error")
		}
		if _, _, err := store.Open(ctx, "short.jpg"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Open after failed Put = %v", err)
		}
		entries, _ := os.ReadDir(root)
		for _, e := range entries {
			if e.Name() != "photo.jpg" {
				t.Errorf("unexpected file left behind: %s", e.Name())
			}
		}
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		if err := store.Delete(ctx, "photo.jpg"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := store.Delete(ctx, "photo.jpg"); err != nil {
			t.Fatalf("second Delete failed: %v", err)
		}
		if _, _, err := store.Open(ctx, "photo.jpg"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Open after Delete = %v", err)
		}
	})

	t.Run("rejects traversal", func(t *testing.T) {
		if err := store.Put(ctx, "../escape.jpg", bytes.NewReader(data), -1, ""); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put = %v", err)
		}
	})
}
