// Package ingest turns an upload batch into stored photos.
//
// Each file is handled independently: a failure is recorded in the result and
// never aborts the rest of the batch. Only the album precondition rejects the
// whole batch.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/memoria/internal/access"
	"github.com/mmynk/memoria/internal/apperr"
	"github.com/mmynk/memoria/internal/blob"
	"github.com/mmynk/memoria/internal/events"
	"github.com/mmynk/memoria/internal/metadata"
	"github.com/mmynk/memoria/internal/metrics"
	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
	"github.com/mmynk/memoria/internal/worker"
)

const (
	DefaultWorkers     = 4
	DefaultMaxFileSize = 20 << 20
)

// Store is the persistence the pipeline needs.
type Store interface {
	GetAlbum(ctx context.Context, id string) (*models.Album, error)
	CreatePhoto(ctx context.Context, photo *models.Photo) error
}

// File is one uploaded file.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Batch is an upload request for one album. PlaceName and Description apply
// to every photo in the batch.
type Batch struct {
	AlbumID     string
	Files       []File
	PlaceName   string
	Description string
}

// Outcome is what happened to one file.
type Outcome string

const (
	OutcomeStored  Outcome = "stored"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// FileResult reports the outcome of one input file, in input order.
type FileResult struct {
	Filename string  `json:"filename"`
	Outcome  Outcome `json:"outcome"`
	PhotoID  string  `json:"photo_id,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// Result lists the created photos in input order.
type Result struct {
	Photos []*models.Photo
	Files  []FileResult
}

// Count is the number of created photos.
func (r *Result) Count() int {
	return len(r.Photos)
}

// Pipeline stores and catalogues uploaded photos.
type Pipeline struct {
	store     Store
	blobs     blob.Store
	extractor *metadata.Extractor
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger

	workers     int
	maxFileSize int64
	fileURL     func(key string) string
	now         func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithPublisher(p events.Publisher) Option { return func(pl *Pipeline) { pl.publisher = p } }
func WithMetrics(m *metrics.Metrics) Option   { return func(pl *Pipeline) { pl.metrics = m } }
func WithLogger(l *slog.Logger) Option        { return func(pl *Pipeline) { pl.logger = l } }
func WithWorkers(n int) Option                { return func(pl *Pipeline) { pl.workers = n } }
func WithMaxFileSize(n int64) Option          { return func(pl *Pipeline) { pl.maxFileSize = n } }

// WithFileURL sets how a storage key becomes the URL clients fetch.
func WithFileURL(fn func(key string) string) Option {
	return func(pl *Pipeline) { pl.fileURL = fn }
}

// New creates a pipeline. Without options it uses DefaultWorkers, no event
// publishing and /files/<key> URLs.
func New(store Store, blobs blob.Store, extractor *metadata.Extractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:       store,
		blobs:       blobs,
		extractor:   extractor,
		publisher:   events.Noop{},
		logger:      slog.Default(),
		workers:     DefaultWorkers,
		maxFileSize: DefaultMaxFileSize,
		fileURL:     func(key string) string { return "/files/" + key },
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "ingest")
	return p
}

// Ingest validates the target album and processes every file. It returns an
// error only when the album is missing or not available to uploader, or the
// album lookup itself fails.
func (p *Pipeline) Ingest(ctx context.Context, uploader *models.User, batch Batch) (*Result, error) {
	album, err := p.store.GetAlbum(ctx, batch.AlbumID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Internal("failed to load album", err)
	}
	if err := access.UploadTarget(uploader, album); err != nil {
		return nil, err
	}

	photos := make([]*models.Photo, len(batch.Files))
	results := make([]FileResult, len(batch.Files))

	pool := worker.NewPool(p.workers)
	for i := range batch.Files {
		i := i
		err := pool.Submit(ctx, func() {
			photos[i], results[i] = p.ingestFile(ctx, uploader, album, batch, batch.Files[i])
		})
		if err != nil {
			results[i] = FileResult{Filename: batch.Files[i].Filename, Outcome: OutcomeFailed, Reason: err.Error()}
		}
	}
	pool.Wait()

	res := &Result{Files: results, Photos: make([]*models.Photo, 0, len(photos))}
	var skipped, failed int
	for i, photo := range photos {
		if photo != nil {
			res.Photos = append(res.Photos, photo)
		}
		switch results[i].Outcome {
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}

	p.logger.Info("Upload batch processed",
		"album_id", album.ID,
		"user_id", uploader.ID,
		"files", len(batch.Files),
		"stored", res.Count(),
		"skipped", skipped,
		"failed", failed,
	)

	if res.Count() > 0 {
		p.publish(ctx, uploader, album, res)
	}
	return res, nil
}

func (p *Pipeline) publish(ctx context.Context, uploader *models.User, album *models.Album, res *Result) {
	ids := make([]string, len(res.Photos))
	for i, photo := range res.Photos {
		ids[i] = photo.ID
	}
	event := events.PhotosUploaded{
		FamilyID:   album.FamilyID,
		AlbumID:    album.ID,
		UploadedBy: uploader.ID,
		PhotoIDs:   ids,
		UploadedAt: p.now(),
	}
	if err := p.publisher.PublishPhotosUploaded(ctx, event); err != nil {
		p.logger.Warn("Failed to publish upload event", "album_id", album.ID, "error", err)
	}
}

// ingestFile never panics; a panic is reported as a failed file.
func (p *Pipeline) ingestFile(ctx context.Context, uploader *models.User, album *models.Album, batch Batch, f File) (photo *models.Photo, result FileResult) {
	result = FileResult{Filename: f.Filename}

	if !IsImage(f.ContentType) {
		result.Outcome = OutcomeSkipped
		result.Reason = fmt.Sprintf("content type %q is not an image", f.ContentType)
		p.metrics.ObserveFile(string(OutcomeSkipped), 0)
		return nil, result
	}

	key := StorageKey(f.Filename)
	stored := false
	fail := func(err error) (*models.Photo, FileResult) {
		if stored {
			if delErr := p.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
				p.logger.Error("Failed to remove blob of failed upload", "key", key, "error", delErr)
			}
		}
		p.logger.Warn("Failed to ingest file", "filename", f.Filename, "album_id", album.ID, "error", err)
		p.metrics.ObserveFile(string(OutcomeFailed), 0)
		return nil, FileResult{Filename: f.Filename, Outcome: OutcomeFailed, Reason: err.Error()}
	}
	defer func() {
		if r := recover(); r != nil {
			photo, result = fail(fmt.Errorf("panic: %v", r))
		}
	}()

	if p.maxFileSize > 0 && int64(len(f.Data)) > p.maxFileSize {
		return fail(fmt.Errorf("file is larger than %d bytes", p.maxFileSize))
	}

	if err := p.blobs.Put(ctx, key, bytes.NewReader(f.Data), int64(len(f.Data)), f.ContentType); err != nil {
		return fail(fmt.Errorf("failed to store file: %w", err))
	}
	stored = true

	meta, err := p.extractStored(ctx, key)
	if err != nil {
		return fail(err)
	}

	photo = &models.Photo{
		ID:           uuid.New().String(),
		Filename:     f.Filename,
		StorageKey:   key,
		FileURL:      p.fileURL(key),
		AlbumID:      album.ID,
		FamilyID:     album.FamilyID,
		UploadedBy:   uploader.ID,
		UploadedAt:   p.now(),
		CapturedAt:   meta.CapturedAt,
		Location:     meta.Location,
		PlaceName:    batch.PlaceName,
		TaggedPeople: []string{},
		Description:  batch.Description,
		Metadata:     meta.Map(),
	}
	if err := p.store.CreatePhoto(ctx, photo); err != nil {
		return fail(fmt.Errorf("failed to save photo: %w", err))
	}

	p.metrics.ObserveFile(string(OutcomeStored), int64(len(f.Data)))
	return photo, FileResult{Filename: f.Filename, Outcome: OutcomeStored, PhotoID: photo.ID}
}

// extractStored reads metadata from the bytes as persisted in the blob store.
func (p *Pipeline) extractStored(ctx context.Context, key string) (*metadata.Result, error) {
	rc, _, err := p.blobs.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	defer rc.Close()

	if rs, ok := rc.(io.ReadSeeker); ok {
		return p.extractor.Extract(rs), nil
	}
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	return p.extractor.ExtractBytes(data), nil
}

// IsImage reports whether a declared content type is image/*.
func IsImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

// StorageKey returns a fresh unique key keeping the extension of the original
// filename as given.
func StorageKey(filename string) string {
	return uuid.New().String() + filepath.Ext(filename)
}
