// Package firestore implements repository.Store on Cloud Firestore using the
// collection layout of the mobile app: vendors, fishCatalog, settings/fishStatus,
// activityLogs and vendors/{id}/activityLog.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mamadbah2/fishtrace/internal/domain/models"
	"github.com/mamadbah2/fishtrace/internal/repository"
)

const (
	vendorsCollection      = "vendors"
	catalogCollection      = "fishCatalog"
	settingsCollection     = "settings"
	activityCollection     = "activityLogs"
	vendorLogSubcollection = "activityLog"

	fishStatusDoc = "fishStatus"
)

var _ repository.Store = (*Repository)(nil)

// Repository is a Firestore-backed store.
type Repository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewClient creates a Firestore client. An empty credentialsFile falls back to
// application default credentials.
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

// NewRepository wraps an existing client.
func NewRepository(client *firestore.Client, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{client: client, logger: logger.Named("repo.firestore")}
}

// Ping performs a cheap read.
func (r *Repository) Ping(ctx context.Context) error {
	_, err := r.client.Collection(settingsCollection).Doc(fishStatusDoc).Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return wrapErr("ping", err)
	}
	return nil
}

// Close releases the client.
func (r *Repository) Close(context.Context) error {
	return r.client.Close()
}

func (r *Repository) col(name string) *firestore.CollectionRef {
	return r.client.Collection(name)
}

// drain reads every document of it and closes it.
func drain(it *firestore.DocumentIterator, fn func(*firestore.DocumentSnapshot) error) error {
	defer it.Stop()
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
}

func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrValidation):
		return err
	}

	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	case codes.AlreadyExists:
		return fmt.Errorf("%s: %w", op, models.ErrConflict)
	default:
		return fmt.Errorf("%s: %w: %w", op, models.ErrStoreUnavailable, err)
	}
}
