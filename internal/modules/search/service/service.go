package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"anoa.com/kudoswall/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const kudosIndex = "kudos"

type SearchService interface {
	IndexKudos(ctx context.Context, kudos *entity.Kudos) error
	// SearchKudos returns matching kudos ids, best match first.
	SearchKudos(ctx context.Context, query string, limit int) ([]uuid.UUID, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       *zap.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, log *zap.Logger) SearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log.Named("search"),
	}
	s.initIndex()
	return s
}

func (s *meiliSearchService) initIndex() {
	filterable := []interface{}{"category", "sender_id", "receiver_id"}
	if _, err := s.client.Index(kudosIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.log.Warn("failed to update kudos filterable attributes", zap.Error(err))
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(kudosIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.Warn("failed to update kudos sortable attributes", zap.Error(err))
	}
}

type kudosDoc struct {
	ID         string `json:"id"`
	Message    string `json:"message"`
	Category   string `json:"category"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	CreatedAt  int64  `json:"created_at"`
}

// CleanText flattens content to plain text for the search index.
func CleanText(p *bluemonday.Policy, content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")
	clean := html.UnescapeString(p.Sanitize(content))
	return strings.Join(strings.Fields(clean), " ")
}

func (s *meiliSearchService) IndexKudos(ctx context.Context, kudos *entity.Kudos) error {
	doc := kudosDoc{
		ID:         kudos.ID.String(),
		Message:    CleanText(s.sanitizer, kudos.Message),
		Category:   kudos.Category,
		SenderID:   kudos.SenderID.String(),
		ReceiverID: kudos.ReceiverID.String(),
		CreatedAt:  kudos.CreatedAt.Unix(),
	}

	task, err := s.client.Index(kudosIndex).AddDocuments([]kudosDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index kudos: %w", err)
	}
	s.log.Debug("kudos indexed", zap.String("kudos_id", doc.ID), zap.Int64("task_uid", task.TaskUID))
	return nil
}

type searchHits struct {
	Hits []struct {
		ID string `json:"id"`
	} `json:"hits"`
}

func (s *meiliSearchService) SearchKudos(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 20
	}

	raw, err := s.client.Index(kudosIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("search kudos: %w", err)
	}

	var res searchHits
	if err := json.Unmarshal(*raw, &res); err != nil {
		return nil, fmt.Errorf("decode search result: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}

type noopSearchService struct{}

// NewNoopSearchService is used when no search host is configured.
func NewNoopSearchService() SearchService {
	return noopSearchService{}
}

func (noopSearchService) IndexKudos(context.Context, *entity.Kudos) error {
	return nil
}

func (noopSearchService) SearchKudos(context.Context, string, int) ([]uuid.UUID, error) {
	return []uuid.UUID{}, nil
}
