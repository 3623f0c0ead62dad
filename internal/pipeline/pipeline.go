// File: internal/pipeline/pipeline.go

// Package pipeline orchestrates a full post download: session assurance,
// credential extraction, API fetch, media resolution and retrieval.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/content"
	"github.com/ehc-io/xmedia-downloader/internal/credentials"
	"github.com/ehc-io/xmedia-downloader/internal/downloader"
	"github.com/ehc-io/xmedia-downloader/internal/xapi"
)

// ErrInvalidPostURL rejects inputs that do not point at a single post.
var ErrInvalidPostURL = errors.New("not a recognizable post URL")

// SessionManager guarantees a usable session artifact on disk.
type SessionManager interface {
	EnsureValidSession(ctx context.Context) error
	Path() string
	Identity() (string, error)
}

// CredentialSource extracts a token bundle from a session artifact.
type CredentialSource interface {
	Extract(ctx context.Context, artifactPath string) (credentials.Bundle, error)
}

// MetadataSource reads post metadata from the rendered page.
type MetadataSource interface {
	Metadata(ctx context.Context, artifactPath, postURL string) (content.Metadata, error)
}

// PostFetcher retrieves the structured envelope for a post.
type PostFetcher interface {
	FetchPost(ctx context.Context, postID string, bundle credentials.Bundle) (xapi.Envelope, error)
}

// MediaSink persists resolved media items.
type MediaSink interface {
	DownloadAll(ctx context.Context, meta content.Metadata, items []xapi.Media) ([]downloader.Result, error)
}

// Pipeline runs post downloads end to end.
type Pipeline struct {
	session  SessionManager
	creds    CredentialSource
	cache    *credentials.Cache
	metadata MetadataSource
	fetcher  PostFetcher
	sink     MediaSink
	log      *zap.Logger
}

// New wires a pipeline from its collaborators.
func New(
	session SessionManager,
	creds CredentialSource,
	cache *credentials.Cache,
	metadata MetadataSource,
	fetcher PostFetcher,
	sink MediaSink,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		session:  session,
		creds:    creds,
		cache:    cache,
		metadata: metadata,
		fetcher:  fetcher,
		sink:     sink,
		log:      logger.Named("pipeline"),
	}
}

// Run downloads all media attached to the post at postURL. Authentication
// rejections from the API trigger exactly one credential re-extraction and
// fetch retry before giving up.
func (p *Pipeline) Run(ctx context.Context, postURL string) ([]downloader.Result, error) {
	if !content.ValidPostURL(postURL) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPostURL, postURL)
	}
	postID := content.PostIDFromURL(postURL)
	log := p.log.With(zap.String("post_id", postID))

	if err := p.session.EnsureValidSession(ctx); err != nil {
		return nil, fmt.Errorf("session could not be made valid: %w", err)
	}

	meta, err := p.metadata.Metadata(ctx, p.session.Path(), postURL)
	if err != nil {
		return nil, fmt.Errorf("failed to read post metadata: %w", err)
	}
	log.Info("Post metadata resolved.",
		zap.String("handle", meta.Handle),
		zap.Time("timestamp", meta.Timestamp),
	)

	bundle, identity, err := p.obtainCredentials(ctx)
	if err != nil {
		return nil, err
	}

	env, err := p.fetcher.FetchPost(ctx, postID, bundle)
	if err != nil && isAuthRejection(err) {
		log.Warn("API rejected credentials; re-extracting and retrying once.")
		p.cache.Invalidate(identity)
		bundle, _, err = p.obtainCredentials(ctx)
		if err != nil {
			return nil, err
		}
		env, err = p.fetcher.FetchPost(ctx, postID, bundle)
	}
	if err != nil {
		return nil, fmt.Errorf("post fetch failed: %w", err)
	}

	items := xapi.ResolveMedia(env, p.log)
	if len(items) == 0 {
		log.Info("Post carries no downloadable media.")
		return nil, nil
	}
	log.Info("Resolved media items.", zap.Int("count", len(items)))

	return p.sink.DownloadAll(ctx, meta, items)
}

// obtainCredentials returns a complete bundle for the current artifact,
// serving from the cache when the artifact has not changed since the last
// extraction.
func (p *Pipeline) obtainCredentials(ctx context.Context) (credentials.Bundle, string, error) {
	identity, err := p.session.Identity()
	if err != nil {
		return credentials.Bundle{}, "", fmt.Errorf("failed to identify session artifact: %w", err)
	}
	if bundle, ok := p.cache.Get(identity); ok {
		return bundle, identity, nil
	}

	bundle, err := p.creds.Extract(ctx, p.session.Path())
	if err != nil {
		return credentials.Bundle{}, identity, fmt.Errorf("credential extraction failed: %w", err)
	}
	p.cache.Put(identity, bundle)
	return bundle, identity, nil
}

func isAuthRejection(err error) bool {
	var remote *xapi.RemoteError
	return errors.As(err, &remote) && remote.Authentication()
}
