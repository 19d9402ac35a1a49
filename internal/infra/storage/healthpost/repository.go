package healthpost

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HPS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/HPS-BookingService/pkg/psqlbuilder"
)

// Справочник постов здоровья принадлежит внешнему административному
// контуру; ядру нужна только сверка города поста при допуске бронирования.

type DBExecutor = dbmetrics.DBExecutor

// Repository read-only репозиторий постов здоровья
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория постов здоровья
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetCityID возвращает город, которому принадлежит пост здоровья
func (r *Repository) GetCityID(ctx context.Context, healthPostID string) (string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("city_id").
		From("health_posts").
		Where(squirrel.Eq{"id": healthPostID}).
		ToSql()

	if err != nil {
		return "", fmt.Errorf("%w: GetCityID - build select query: %v", ErrBuildQuery, err)
	}

	var cityID string
	err = executor.QueryRowContext(ctx, query, args...).Scan(&cityID)
	if err == sql.ErrNoRows {
		return "", ErrHealthPostNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: GetCityID - scan city_id: %v", ErrExecQuery, err)
	}

	return cityID, nil
}
