package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/apperr"
	"github.com/VitaminP8/linkfeed/internal/link"
	"github.com/VitaminP8/linkfeed/models"
	"github.com/jinzhu/gorm"
	"github.com/lib/pq"
)

type LinkPostgresStorage struct {
	db *gorm.DB
}

func NewLinkPostgresStorage(db *gorm.DB) *LinkPostgresStorage {
	return &LinkPostgresStorage{db: db}
}

const uniqueViolation = "23505"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filtered применяет фильтр "description или url содержит подстроку"
func (s *LinkPostgresStorage) filtered(f link.Filter) *gorm.DB {
	q := s.db.Model(&models.Link{})
	if f.Empty() {
		return q
	}

	pattern := "%" + likeEscaper.Replace(f.Contains) + "%"
	return q.Where(`description LIKE ? ESCAPE '\' OR url LIKE ? ESCAPE '\'`, pattern, pattern)
}

func (s *LinkPostgresStorage) CountLinks(ctx context.Context, filter link.Filter) (int, error) {
	var count int
	err := s.filtered(filter).Count(&count).Error
	if err != nil {
		return 0, apperr.Store("could not count links", err)
	}
	return count, nil
}

func (s *LinkPostgresStorage) FindLinks(ctx context.Context, opts link.ListOptions) ([]*model.Link, error) {
	if opts.Take != nil && *opts.Take == 0 {
		return []*model.Link{}, nil
	}

	q := s.filtered(opts.Filter)
	for _, o := range opts.OrderBy {
		dir := "asc"
		if o.Descending {
			dir = "desc"
		}
		q = q.Order(fmt.Sprintf("%s %s", o.Field, dir))
	}
	if len(opts.OrderBy) > 0 {
		q = q.Order("id asc") // стабильная пагинация при равных ключах
	}

	if opts.Take != nil {
		q = q.Limit(*opts.Take)
	} else if opts.Skip > 0 {
		// sqlite не принимает OFFSET без LIMIT
		q = q.Limit(math.MaxInt32)
	}
	if opts.Skip > 0 {
		q = q.Offset(opts.Skip)
	}

	var rows []models.Link
	err := q.Preload("PostedBy").Preload("Votes.User").Find(&rows).Error
	if err != nil {
		return nil, apperr.Store("could not find links", err)
	}

	results := make([]*model.Link, 0, len(rows))
	for i := range rows {
		results = append(results, toLink(&rows[i]))
	}
	return results, nil
}

func (s *LinkPostgresStorage) GetLinkByID(ctx context.Context, id uint) (*model.Link, error) {
	row, err := s.loadLink(id)
	if err != nil {
		return nil, err
	}
	return toLink(row), nil
}

func (s *LinkPostgresStorage) CreateLink(ctx context.Context, description, url string, postedByID *uint) (*model.Link, error) {
	row := &models.Link{
		Description: description,
		URL:         url,
		PostedByID:  postedByID,
	}

	err := s.db.Create(row).Error
	if err != nil {
		return nil, apperr.Store("could not create link", err)
	}

	return s.GetLinkByID(ctx, row.ID)
}

func (s *LinkPostgresStorage) UpdateLink(ctx context.Context, id uint, patch link.Patch) (*model.Link, error) {
	row, err := s.loadLink(id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return toLink(row), nil
	}

	fields := make(map[string]interface{}, 2)
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.URL != nil {
		fields["url"] = *patch.URL
	}

	err = s.db.Model(&models.Link{Model: gorm.Model{ID: id}}).Updates(fields).Error
	if err != nil {
		return nil, apperr.Store("could not update link", err)
	}

	return s.GetLinkByID(ctx, id)
}

// DeleteLinkByID удаляет ссылку и возвращает ее состояние до удаления
func (s *LinkPostgresStorage) DeleteLinkByID(ctx context.Context, id uint) (*model.Link, error) {
	row, err := s.loadLink(id)
	if err != nil {
		return nil, err
	}

	err = s.db.Delete(&models.Link{}, id).Error
	if err != nil {
		return nil, apperr.Store("could not delete link", err)
	}

	return toLink(row), nil
}

func (s *LinkPostgresStorage) Vote(ctx context.Context, linkID, userID uint) (*model.Vote, error) {
	var l models.Link
	err := s.db.First(&l, linkID).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, apperr.NotFound("link %d not found", linkID)
	}
	if err != nil {
		return nil, apperr.Store("could not get link", err)
	}

	var u models.User
	err = s.db.First(&u, userID).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, apperr.NotFound("user %d not found", userID)
	}
	if err != nil {
		return nil, apperr.Store("could not get user", err)
	}

	var existing models.Vote
	err = s.db.Where("link_id = ? AND user_id = ?", linkID, userID).First(&existing).Error
	if err == nil {
		return nil, apperr.Validation("user %d already voted for link %d", userID, linkID)
	}
	if !gorm.IsRecordNotFoundError(err) {
		return nil, apperr.Store("could not check vote", err)
	}

	vote, err := s.createVote(linkID, userID)
	if err != nil {
		return nil, err
	}

	voted, err := s.GetLinkByID(ctx, linkID)
	if err != nil {
		return nil, err
	}

	return &model.Vote{
		ID:   int(vote.ID),
		Link: voted,
		User: toUser(&u),
	}, nil
}

// createVote вставляет голос; проверка выше не атомарна, поэтому гонку двух
// одинаковых голосов ловит уникальный индекс idx_vote_link_user
func (s *LinkPostgresStorage) createVote(linkID, userID uint) (*models.Vote, error) {
	vote := &models.Vote{LinkID: linkID, UserID: userID}
	err := s.db.Create(vote).Error
	if isUniqueViolation(err) {
		return nil, apperr.Validation("user %d already voted for link %d", userID, linkID)
	}
	if err != nil {
		return nil, apperr.Store("could not create vote", err)
	}
	return vote, nil
}

// postgres отдает код 23505, sqlite (в тестах) только текст ошибки
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *LinkPostgresStorage) loadLink(id uint) (*models.Link, error) {
	var row models.Link
	err := s.db.Preload("PostedBy").Preload("Votes.User").First(&row, id).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, apperr.NotFound("link %d not found", id)
	}
	if err != nil {
		return nil, apperr.Store("could not get link by id", err)
	}
	return &row, nil
}

func toLink(row *models.Link) *model.Link {
	result := &model.Link{
		ID:          int(row.ID),
		Description: row.Description,
		URL:         row.URL,
		CreatedAt:   row.CreatedAt,
		Voters:      make([]*model.User, 0, len(row.Votes)),
	}
	if row.PostedBy != nil && row.PostedBy.ID != 0 {
		result.PostedBy = toUser(row.PostedBy)
	}
	for i := range row.Votes {
		result.Voters = append(result.Voters, toUser(&row.Votes[i].User))
	}
	return result
}
