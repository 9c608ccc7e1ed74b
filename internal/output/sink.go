package output

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/gcsblob"  // GCS driver
	_ "gocloud.dev/blob/s3blob"   // S3 driver

	"lovelybooks/collector/internal/config"
	"lovelybooks/collector/internal/domain"
)

// Sink is the single output handle of a run.
type Sink interface {
	io.Writer
	// Name is the path or bucket key of the artifact
	Name() string
	Close() error
}

// Opener creates the sink for a run.
type Opener interface {
	Open(ctx context.Context, run domain.Run) (Sink, error)
}

type opener struct {
	cfg config.OutputConfig
}

func NewOpener(cfg config.OutputConfig) Opener {
	return &opener{cfg: cfg}
}

// FileName is the artifact name of a run: prefix, start timestamp and the
// short run ID, so runs started within the same second never collide.
func FileName(cfg config.OutputConfig, run domain.Run) string {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "books"
	}

	name := fmt.Sprintf("%s_%s_%s.json", prefix, run.Timestamp(), run.ShortID())
	if cfg.Compression == "zstd" {
		name += ".zst"
	}
	return name
}

func (o *opener) Open(ctx context.Context, run domain.Run) (Sink, error) {
	name := FileName(o.cfg, run)

	var (
		s   *sink
		err error
	)
	if isBucketURL(o.cfg.Dir) {
		s, err = openBucket(ctx, o.cfg.Dir, name)
	} else {
		s, err = openFile(o.cfg.Dir, name)
	}
	if err != nil {
		return nil, err
	}

	if o.cfg.Compression == "zstd" {
		enc, err := zstd.NewWriter(s.w)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		s.w = enc
		s.closers = append([]func() error{enc.Close}, s.closers...)
	}

	log.Infof("📝 Writing books to %s", s.name)
	return s, nil
}

func isBucketURL(dir string) bool {
	return strings.Contains(dir, "://")
}

// sink writes through w and releases closers in order on Close.
type sink struct {
	name    string
	w       io.Writer
	closers []func() error
	closed  bool
}

func (s *sink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, os.ErrClosed
	}
	return s.w.Write(p)
}

func (s *sink) Name() string {
	return s.name
}

func (s *sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to close %s: %w", s.name, err)
	}
	return nil
}

func openFile(dir, name string) (*sink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	buffered := bufio.NewWriter(f)
	return &sink{
		name:    path,
		w:       buffered,
		closers: []func() error{buffered.Flush, f.Close},
	}, nil
}

func openBucket(ctx context.Context, dirURL, name string) (*sink, error) {
	loc, err := resolveBucketObject(dirURL, name)
	if err != nil {
		return nil, err
	}

	bucket, err := blob.OpenBucket(ctx, loc.bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", loc.bucketURL, err)
	}

	w, err := bucket.NewWriter(ctx, loc.key, &blob.WriterOptions{ContentType: "application/json"})
	if err != nil {
		_ = bucket.Close()
		return nil, fmt.Errorf("create writer for %s: %w", loc.key, err)
	}

	return &sink{
		name:    loc.name,
		w:       w,
		closers: []func() error{w.Close, bucket.Close},
	}, nil
}

// bucketObject is where a run document lands inside a bucket.
type bucketObject struct {
	bucketURL string // passed to blob.OpenBucket
	key       string // object key inside the bucket
	name      string // bucket URL without query plus key
}

// resolveBucketObject splits an output URL into bucket and key. Cloud drivers
// only take the host as the bucket, so the URL path becomes a key prefix.
// For file:// the path is the bucket directory itself.
func resolveBucketObject(dirURL, name string) (bucketObject, error) {
	u, err := url.Parse(dirURL)
	if err != nil {
		return bucketObject{}, fmt.Errorf("invalid output URL %s: %w", dirURL, err)
	}

	key := name
	bucketURL := *u
	if u.Scheme != "file" {
		key = path.Join(strings.Trim(u.Path, "/"), name)
		bucketURL.Path = ""
		bucketURL.RawPath = ""
	}

	display := url.URL{Scheme: u.Scheme, Host: u.Host, Path: path.Join("/", u.Path, name)}

	return bucketObject{
		bucketURL: bucketURL.String(),
		key:       key,
		name:      display.String(),
	}, nil
}
