package wish

import (
	"context"
	"time"

	"dabwish/internal/adapters/postgres"
	"dabwish/internal/adapters/s3"
	"dabwish/internal/cache"
	"dabwish/internal/domain/subscription"
	"dabwish/internal/domain/user"
	"dabwish/internal/domain/wish"
	"dabwish/internal/events"
	"dabwish/internal/metrics"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
	"dabwish/pkg/pagination"
)

const reindexBatchSize = 100

// Transactor runs fn inside one unit of work
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PhotoStore keeps uploaded wish photos. Delete is best effort.
type PhotoStore interface {
	Upload(ctx context.Context, p s3.Photo) (string, error)
	Delete(ctx context.Context, url string)
}

// Publisher is the subset of event publishing the wish flow needs
type Publisher interface {
	events.WishPublisher
	events.NotificationPublisher
}

// Service handles wish business logic: persistence, photos, search sync,
// cache and subscriber notifications
type Service struct {
	tx            Transactor
	wishes        wish.Repository
	users         user.Repository
	subscriptions subscription.Repository
	index         wish.SearchIndex
	photos        PhotoStore
	publisher     Publisher
	cache         cache.Cache
	ttl           time.Duration
	log           *logger.Logger

	searchFallback bool
}

// NewService creates a wish service. A nil index or wish.NoopIndex makes
// Search fall back to a Postgres text match; a nil photo store rejects uploads.
func NewService(
	tx Transactor,
	wishes wish.Repository,
	users user.Repository,
	subscriptions subscription.Repository,
	index wish.SearchIndex,
	photos PhotoStore,
	publisher Publisher,
	c cache.Cache,
	ttl time.Duration,
	log *logger.Logger,
) *Service {
	fallback := false
	switch index.(type) {
	case nil:
		index = wish.NoopIndex{}
		fallback = true
	case wish.NoopIndex, *wish.NoopIndex:
		fallback = true
	}
	return &Service{
		tx:             tx,
		wishes:         wishes,
		users:          users,
		subscriptions:  subscriptions,
		index:          index,
		photos:         photos,
		publisher:      publisher,
		cache:          c,
		ttl:            ttl,
		log:            log.With("service", "wish"),
		searchFallback: fallback,
	}
}

// Create stores a wish for userID, uploading photo first when given.
// Search sync, events, follower notifications and cache eviction happen after commit.
func (s *Service) Create(ctx context.Context, userID int64, w *wish.Wish, photo *s3.Photo) (*wish.Wish, error) {
	w.UserID = userID
	if err := wish.Validate(w); err != nil {
		return nil, err
	}

	var owner *user.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		owner, err = s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if photo != nil {
			url, err := s.upload(ctx, *photo)
			if err != nil {
				return err
			}
			w.PhotoURL = &url
		}

		if err := s.wishes.Create(ctx, w); err != nil {
			return err
		}

		postgres.AfterCommit(ctx, func(ctx context.Context) {
			s.syncIndex(ctx, w)
			s.publishCreated(ctx, w)
			s.notifySubscribers(ctx, owner, w)
			cache.Evict(ctx, s.cache, s.log, nil, cache.UserWishesPattern(userID))
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create wish")
	}

	s.log.Infow("Wish created", "wish_id", w.ID, "user_id", userID, "has_photo", w.PhotoURL != nil)
	return w, nil
}

// Update applies patch to the wish and optionally replaces its photo.
// The previous photo is deleted after commit when no other wish references it.
func (s *Service) Update(ctx context.Context, id int64, patch wish.Patch, photo *s3.Photo) (*wish.Wish, error) {
	var updated *wish.Wish
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		w, err := s.wishes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		oldURL := w.PhotoURL

		patch.Apply(w)
		if err := wish.Validate(w); err != nil {
			return err
		}

		if photo != nil {
			url, err := s.upload(ctx, *photo)
			if err != nil {
				return err
			}
			w.PhotoURL = &url
		}

		// Counted while the row still points at the old photo, so the
		// count includes this wish like it does on Delete
		if oldURL != nil && (w.PhotoURL == nil || *w.PhotoURL != *oldURL) {
			if err := s.scheduleOrphanCleanup(ctx, *oldURL); err != nil {
				return err
			}
		}

		if err := s.wishes.Update(ctx, w); err != nil {
			return err
		}

		postgres.AfterCommit(ctx, func(ctx context.Context) {
			s.syncIndex(ctx, w)
			s.publishUpdated(ctx, w)
			cache.Evict(ctx, s.cache, s.log, []string{cache.WishKey(w.ID)}, cache.UserWishesPattern(w.UserID))
		})
		updated = w
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update wish")
	}

	s.log.Infow("Wish updated", "wish_id", id)
	return updated, nil
}

// Delete removes a wish, its search document and, when it was the last
// reference, its photo
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		w, err := s.wishes.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if w.PhotoURL != nil {
			if err := s.scheduleOrphanCleanup(ctx, *w.PhotoURL); err != nil {
				return err
			}
		}

		if err := s.wishes.Delete(ctx, id); err != nil {
			return err
		}

		postgres.AfterCommit(ctx, func(ctx context.Context) {
			if err := s.index.Delete(ctx, id); err != nil {
				metrics.SearchSyncFailures.WithLabelValues("delete").Inc()
				s.log.Debugw("Failed to remove wish from search index", "wish_id", id, "error", err)
			}
			cache.Evict(ctx, s.cache, s.log, []string{cache.WishKey(id)}, cache.UserWishesPattern(w.UserID))
		})
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete wish")
	}

	s.log.Infow("Wish deleted", "wish_id", id)
	return nil
}

// GetByID returns a wish, served from cache when possible
func (s *Service) GetByID(ctx context.Context, id int64) (*wish.Wish, error) {
	return cache.GetOrLoad(ctx, s.cache, s.log, cache.WishKey(id), s.ttl,
		func(ctx context.Context) (*wish.Wish, error) {
			return s.wishes.GetByID(ctx, id)
		})
}

// ListByUser returns one page of the user's wishes, newest first
func (s *Service) ListByUser(ctx context.Context, userID int64, p pagination.Params) (pagination.Page[wish.Wish], error) {
	p = p.Normalize()
	return cache.GetOrLoad(ctx, s.cache, s.log, cache.UserWishesKey(userID, p.Page, p.Size), s.ttl,
		func(ctx context.Context) (pagination.Page[wish.Wish], error) {
			if _, err := s.users.GetByID(ctx, userID); err != nil {
				return pagination.Page[wish.Wish]{}, err
			}
			items, total, err := s.wishes.ListByUser(ctx, userID, p.Limit(), p.Offset())
			if err != nil {
				return pagination.Page[wish.Wish]{}, err
			}
			return pagination.NewPage(items, total, p), nil
		})
}

// Search finds wishes whose title or description contain query. Results
// keep the index order; wishes of excludeUserID are left out.
func (s *Service) Search(ctx context.Context, query string, excludeUserID *int64, p pagination.Params) (pagination.Page[wish.Wish], error) {
	p = p.Normalize()

	if s.searchFallback {
		items, total, err := s.wishes.SearchByText(ctx, query, excludeUserID, p.Limit(), p.Offset())
		if err != nil {
			return pagination.Page[wish.Wish]{}, errors.Wrap(err, "failed to search wishes")
		}
		return pagination.NewPage(items, total, p), nil
	}

	ids, total, err := s.index.Search(ctx, query, excludeUserID, p.Limit(), p.Offset())
	if err != nil {
		return pagination.Page[wish.Wish]{}, errors.Wrap(err, "failed to search wishes")
	}
	if len(ids) == 0 {
		return pagination.NewPage[wish.Wish](nil, total, p), nil
	}

	rows, err := s.wishes.GetByIDs(ctx, ids)
	if err != nil {
		return pagination.Page[wish.Wish]{}, errors.Wrap(err, "failed to load search results")
	}
	byID := make(map[int64]wish.Wish, len(rows))
	for _, w := range rows {
		byID[w.ID] = w
	}

	items := make([]wish.Wish, 0, len(ids))
	for _, id := range ids {
		w, ok := byID[id]
		if !ok {
			// Index is ahead of or behind the database
			continue
		}
		if excludeUserID != nil && w.UserID == *excludeUserID {
			continue
		}
		items = append(items, w)
	}
	return pagination.NewPage(items, total, p), nil
}

// ReindexAll pushes every wish to the search index in batches. It returns
// the number of documents written.
func (s *Service) ReindexAll(ctx context.Context) (int, error) {
	if s.searchFallback {
		return 0, nil
	}

	var afterID int64
	indexed := 0
	for {
		batch, err := s.wishes.ListAfter(ctx, afterID, reindexBatchSize)
		if err != nil {
			return indexed, errors.Wrap(err, "failed to list wishes for reindex")
		}
		if len(batch) == 0 {
			break
		}

		docs := make([]wish.Document, len(batch))
		for i := range batch {
			docs[i] = wish.ToDocument(&batch[i])
		}
		if err := s.index.Upsert(ctx, docs...); err != nil {
			metrics.SearchSyncFailures.WithLabelValues("reindex").Inc()
			return indexed, errors.Wrap(err, "failed to upsert reindex batch")
		}

		indexed += len(batch)
		afterID = batch[len(batch)-1].ID
		if len(batch) < reindexBatchSize {
			break
		}
	}

	s.log.Infow("Search index rebuilt", "documents", indexed)
	return indexed, nil
}

// upload stores the photo and registers its removal should the transaction roll back
func (s *Service) upload(ctx context.Context, photo s3.Photo) (string, error) {
	if s.photos == nil {
		return "", errors.Wrap(errors.ErrUnavailable, "photo storage is not configured")
	}
	url, err := s.photos.Upload(ctx, photo)
	if err != nil {
		return "", err
	}
	postgres.AfterRollback(ctx, func(ctx context.Context) {
		s.log.Infow("Removing photo of rolled back wish", "url", url)
		s.photos.Delete(ctx, url)
	})
	return url, nil
}

// scheduleOrphanCleanup deletes url after commit when the wish being changed
// is its only reference
func (s *Service) scheduleOrphanCleanup(ctx context.Context, url string) error {
	if s.photos == nil {
		return nil
	}
	refs, err := s.wishes.CountByPhotoURL(ctx, url)
	if err != nil {
		return err
	}
	if refs > 1 {
		s.log.Debugw("Photo still referenced, keeping it", "url", url, "references", refs)
		return nil
	}
	postgres.AfterCommit(ctx, func(ctx context.Context) {
		s.photos.Delete(ctx, url)
	})
	return nil
}

func (s *Service) syncIndex(ctx context.Context, w *wish.Wish) {
	if err := s.index.Upsert(ctx, wish.ToDocument(w)); err != nil {
		metrics.SearchSyncFailures.WithLabelValues("upsert").Inc()
		s.log.Debugw("Failed to sync wish to search index", "wish_id", w.ID, "error", err)
	}
}

func (s *Service) publishCreated(ctx context.Context, w *wish.Wish) {
	desc, photo, price := eventFields(w)
	err := s.publisher.PublishWishCreated(ctx, &events.WishCreatedEvent{
		WishID:      w.ID,
		OwnerID:     w.UserID,
		Title:       events.SanitizeUTF8(w.Title),
		Description: desc,
		PhotoURL:    photo,
		Price:       price,
		CreatedAt:   events.FormatTime(w.CreatedAt),
	})
	if err != nil {
		s.log.Warnw("Failed to publish wish created event", "wish_id", w.ID, "error", err)
	}
}

func (s *Service) publishUpdated(ctx context.Context, w *wish.Wish) {
	desc, photo, price := eventFields(w)
	updatedAt := time.Now()
	if w.UpdatedAt != nil {
		updatedAt = *w.UpdatedAt
	}
	err := s.publisher.PublishWishUpdated(ctx, &events.WishUpdatedEvent{
		WishID:      w.ID,
		OwnerID:     w.UserID,
		Title:       events.SanitizeUTF8(w.Title),
		Description: desc,
		PhotoURL:    photo,
		Price:       price,
		UpdatedAt:   events.FormatTime(updatedAt),
	})
	if err != nil {
		s.log.Warnw("Failed to publish wish updated event", "wish_id", w.ID, "error", err)
	}
}

// notifySubscribers publishes one notification per follower of the owner
// that has a linked Telegram account
func (s *Service) notifySubscribers(ctx context.Context, owner *user.User, w *wish.Wish) {
	followers, err := s.subscriptions.ListTelegramFollowers(ctx, owner.ID)
	if err != nil {
		s.log.Errorw("Failed to load followers for notification", "wish_id", w.ID, "owner_id", owner.ID, "error", err)
		return
	}

	sent := 0
	for _, f := range followers {
		err := s.publisher.PublishWishNotification(ctx, &events.WishNotificationEvent{
			WishID:                     w.ID,
			OwnerID:                    owner.ID,
			OwnerName:                  events.SanitizeUTF8(owner.Name),
			WishTitle:                  events.SanitizeUTF8(w.Title),
			SubscriberID:               f.UserID,
			SubscriberTelegramUsername: f.TelegramUsername,
		})
		if err != nil {
			s.log.Warnw("Failed to publish wish notification",
				"wish_id", w.ID, "subscriber_id", f.UserID, "error", err)
			continue
		}
		sent++
	}

	if len(followers) > 0 {
		s.log.Infow("Wish notifications published", "wish_id", w.ID, "followers", len(followers), "published", sent)
	}
}

func eventFields(w *wish.Wish) (desc, photo, price *string) {
	if w.Description != nil {
		desc = events.OptionalString(*w.Description)
	}
	if w.PhotoURL != nil {
		photo = events.OptionalString(*w.PhotoURL)
	}
	if w.Price.Valid {
		p := w.Price.Decimal.String()
		price = &p
	}
	return desc, photo, price
}
