package sqlstore

import (
	"context"
	"fmt"

	"github.com/mmynk/memoria/internal/models"
)

const commentColumns = `id, photo_id, author_id, text, created_at, edited`

// CreateComment appends a comment to a photo.
func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	_, err := s.exec(ctx, s.db,
		`INSERT INTO comments (`+commentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.PhotoID,
		comment.AuthorID,
		comment.Text,
		toMillis(comment.CreatedAt),
		comment.Edited,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListComments returns a photo's comments oldest first.
func (s *Store) ListComments(ctx context.Context, photoID string) ([]*models.Comment, error) {
	rows, err := s.query(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE photo_id = ? ORDER BY created_at, id`,
		photoID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.PhotoID, &c.AuthorID, &c.Text, &createdAt, &c.Edited); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.CreatedAt = fromMillis(createdAt)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, nil
}

const reactionColumns = `id, photo_id, author_id, kind, created_at`

// UpsertReaction inserts the reaction or replaces the kind of the author's
// existing reaction to the same photo. The original ID is kept.
func (s *Store) UpsertReaction(ctx context.Context, reaction *models.Reaction) (*models.Reaction, error) {
	_, err := s.exec(ctx, s.db,
		`INSERT INTO reactions (`+reactionColumns+`) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (photo_id, author_id) DO UPDATE SET kind = excluded.kind, created_at = excluded.created_at`,
		reaction.ID,
		reaction.PhotoID,
		reaction.AuthorID,
		string(reaction.Kind),
		toMillis(reaction.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert reaction: %w", err)
	}

	stored := &models.Reaction{}
	var kind string
	var createdAt int64
	err = s.queryRow(ctx,
		`SELECT `+reactionColumns+` FROM reactions WHERE photo_id = ? AND author_id = ?`,
		reaction.PhotoID, reaction.AuthorID,
	).Scan(&stored.ID, &stored.PhotoID, &stored.AuthorID, &kind, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read reaction: %w", err)
	}
	stored.Kind = models.ReactionKind(kind)
	stored.CreatedAt = fromMillis(createdAt)
	return stored, nil
}

// ListReactions returns a photo's reactions, one per author.
func (s *Store) ListReactions(ctx context.Context, photoID string) ([]*models.Reaction, error) {
	rows, err := s.query(ctx,
		`SELECT `+reactionColumns+` FROM reactions WHERE photo_id = ? ORDER BY created_at, id`,
		photoID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer rows.Close()

	var reactions []*models.Reaction
	for rows.Next() {
		r := &models.Reaction{}
		var kind string
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.PhotoID, &r.AuthorID, &kind, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		r.Kind = models.ReactionKind(kind)
		r.CreatedAt = fromMillis(createdAt)
		reactions = append(reactions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reactions: %w", err)
	}
	return reactions, nil
}
