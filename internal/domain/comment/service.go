// internal/domain/comment/service.go
package comment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	AnonymousName  = "Anónimo"
	MaxTextLength  = 1000
	MaxNameLength  = 80
	MaxPerProduct  = 200
	maxTxRetries   = 5
	commentsPrefix = "comments:product:"
)

var ErrEmptyText = errors.New("comment text is required")

// Comment is a guestbook entry. Date is unix milliseconds, as the browser stored it.
type Comment struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Date int64  `json:"date"`
}

// Time returns Date as a time.Time
func (c Comment) Time() time.Time {
	return time.UnixMilli(c.Date)
}

// CreateCommentRequest represents a new comment
type CreateCommentRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Service stores per-product comments in Redis, newest first
type Service struct {
	client *redis.Client
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates a new comment service
func NewService(client *redis.Client, logger *logrus.Logger) *Service {
	return &Service{client: client, logger: logger, now: time.Now}
}

func commentsKey(productID int64) string {
	return fmt.Sprintf("%s%d", commentsPrefix, productID)
}

// List returns the comments of a product, newest first
func (s *Service) List(ctx context.Context, productID int64) ([]Comment, error) {
	return s.load(ctx, s.client, productID)
}

// Add prepends a comment. Empty names become "Anónimo"; text is trimmed,
// must not be empty, and is capped at MaxTextLength characters.
func (s *Service) Add(ctx context.Context, productID int64, req *CreateCommentRequest) (*Comment, error) {
	text := truncate(strings.TrimSpace(req.Text), MaxTextLength)
	if text == "" {
		return nil, ErrEmptyText
	}
	name := truncate(strings.TrimSpace(req.Name), MaxNameLength)
	if name == "" {
		name = AnonymousName
	}

	entry := Comment{Name: name, Text: text, Date: s.now().UnixMilli()}
	key := commentsKey(productID)

	txf := func(tx *redis.Tx) error {
		list, err := s.load(ctx, tx, productID)
		if err != nil {
			return err
		}

		list = append([]Comment{entry}, list...)
		if len(list) > MaxPerProduct {
			list = list[:MaxPerProduct]
		}

		data, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("failed to encode comments: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			s.logger.WithField("product_id", productID).Debug("Comment added")
			return &entry, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("failed to save comment: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to save comment: too much contention on %s", key)
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Service) load(ctx context.Context, c getter, productID int64) ([]Comment, error) {
	data, err := c.Get(ctx, commentsKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []Comment{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	var list []Comment
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	for i := range list {
		if list[i].Name == "" {
			list[i].Name = AnonymousName
		}
	}
	return list, nil
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
