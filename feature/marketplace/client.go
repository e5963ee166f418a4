package marketplace

import (
	"context"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"tversky-reconcile/core/reconcile"
	"tversky-reconcile/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client serves HIT resolution and assignment listing from one export.
// The export is read once, on first use.
type Client struct {
	source   string
	store    storage.Client
	registry *Registry
	statuses []string
	log      *zap.Logger

	once        sync.Once
	assignments []reconcile.Assignment
	loadErr     error
}

// NewClient creates a Client. store may be nil when the export is a local file.
func NewClient(cfg Config, store storage.Client, registry *Registry) *Client {
	return &Client{
		source:   strings.TrimSpace(cfg.Results),
		store:    store,
		registry: registry,
		statuses: cfg.AcceptedStatuses(),
		log:      zap.NewNop(),
	}
}

// WithLogger sets the logger.
func (c *Client) WithLogger(l *zap.Logger) *Client {
	c.log = l
	return c
}

// ResolveHIT maps a nickname or raw HIT ID to the canonical HIT ID.
func (c *Client) ResolveHIT(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", &reconcile.HitNotFoundError{Identifier: identifier}
	}

	if id, ok := c.registry.Lookup(identifier); ok {
		c.log.Debug("Resolved HIT nickname", zap.String("nickname", identifier), zap.String("hit_id", id))
		return id, nil
	}

	assignments, err := c.load(ctx)
	if err != nil {
		return "", err
	}
	for _, a := range assignments {
		if a.HITID == identifier {
			return identifier, nil
		}
	}
	return "", &reconcile.HitNotFoundError{Identifier: identifier}
}

// ListAssignments returns the assignments of hitID with an accepted status.
func (c *Client) ListAssignments(ctx context.Context, hitID string) ([]reconcile.Assignment, error) {
	assignments, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	var out []reconcile.Assignment
	skipped := 0
	for _, a := range assignments {
		if a.HITID != hitID {
			continue
		}
		if !c.accepts(a.Status) {
			skipped++
			continue
		}
		out = append(out, a)
	}

	if skipped > 0 {
		c.log.Info("Skipped assignments by status", zap.String("hit_id", hitID), zap.Int("skipped", skipped))
	}
	return out, nil
}

func (c *Client) accepts(status string) bool {
	if len(c.statuses) == 0 {
		return true
	}
	return slices.Contains(c.statuses, strings.ToLower(status))
}

func (c *Client) load(ctx context.Context) ([]reconcile.Assignment, error) {
	c.once.Do(func() {
		c.assignments, c.loadErr = c.read(ctx)
		if c.loadErr == nil {
			c.log.Debug("Loaded batch results", zap.String("source", c.source), zap.Int("rows", len(c.assignments)))
		}
	})
	return c.assignments, c.loadErr
}

func (c *Client) read(ctx context.Context) ([]reconcile.Assignment, error) {
	if c.source == "" {
		return nil, eris.New("marketplace: results location is not configured")
	}

	rc, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	assignments, err := ParseExport(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "marketplace: parse %s", c.source)
	}
	return assignments, nil
}

func (c *Client) open(ctx context.Context) (io.ReadCloser, error) {
	bucket, key, ok := storage.ParseURI(c.source)
	if !ok {
		if strings.HasPrefix(c.source, "s3://") {
			return nil, eris.Errorf("marketplace: invalid object location %s", c.source)
		}
		f, err := os.Open(c.source)
		if err != nil {
			return nil, eris.Wrapf(err, "marketplace: open %s", c.source)
		}
		return f, nil
	}

	if c.store == nil {
		return nil, eris.Errorf("marketplace: no storage client for %s", c.source)
	}
	obj, err := c.store.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, eris.Wrapf(err, "marketplace: fetch %s", c.source)
	}
	return obj, nil
}
