package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"morse-service/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadyFollowing = errors.New("already following user")
)

// UserRepository reads users and maintains the follow (friend) graph.
// The account subsystem owns user creation; this service only consumes.
type UserRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (models.User, error)
	GetUserByCallsign(ctx context.Context, callsign string) (models.User, error)
	ListFollows(ctx context.Context, userID uuid.UUID) ([]models.User, error)
	Follow(ctx context.Context, userID, targetID uuid.UUID) error
	Unfollow(ctx context.Context, userID, targetID uuid.UUID) error
	IsFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, callsign, created_at FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	user.Status = models.StatusOnline
	return user, err
}

// GetUserByCallsign fetches a user by callsign.
func (r *UserRepo) GetUserByCallsign(ctx context.Context, callsign string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, callsign, created_at FROM users WHERE callsign=$1`, callsign)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	user.Status = models.StatusOnline
	return user, err
}

// ListFollows returns every user the given user follows, oldest follow first.
func (r *UserRepo) ListFollows(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	query := `SELECT u.id, u.callsign, u.created_at FROM users u
        JOIN follows f ON f.target_id = u.id
        WHERE f.user_id=$1
        ORDER BY f.created_at ASC`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var user models.User
		if err := rows.StructScan(&user); err != nil {
			return nil, err
		}
		user.Status = models.StatusOnline
		result = append(result, user)
	}
	return result, rows.Err()
}

// Follow records a follow edge. Following an unknown user fails with
// ErrUserNotFound, re-following with ErrAlreadyFollowing.
func (r *UserRepo) Follow(ctx context.Context, userID, targetID uuid.UUID) error {
	if _, err := r.GetUser(ctx, targetID); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO follows (user_id, target_id) VALUES ($1, $2)
        ON CONFLICT (user_id, target_id) DO NOTHING`, userID, targetID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyFollowing
	}
	return nil
}

// Unfollow removes a follow edge if present.
func (r *UserRepo) Unfollow(ctx context.Context, userID, targetID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM follows WHERE user_id=$1 AND target_id=$2`, userID, targetID)
	return err
}

// IsFollowing checks for a follow edge.
func (r *UserRepo) IsFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM follows WHERE user_id=$1 AND target_id=$2)`, userID, targetID)
	return exists, err
}
