package healthpost

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_GetCityID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT city_id FROM health_posts WHERE id = \$1`).
		WithArgs("hp-1").
		WillReturnRows(sqlmock.NewRows([]string{"city_id"}).AddRow("city-1"))

	cityID, err := repo.GetCityID(context.Background(), "hp-1")
	require.NoError(t, err)
	assert.Equal(t, "city-1", cityID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetCityID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT city_id FROM health_posts WHERE id = \$1`).
		WithArgs("hp-missing").
		WillReturnRows(sqlmock.NewRows([]string{"city_id"}))

	_, err = repo.GetCityID(context.Background(), "hp-missing")
	assert.ErrorIs(t, err, ErrHealthPostNotFound)
}

func TestRepository_GetCityID_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT city_id FROM health_posts`).
		WillReturnError(errors.New("connection reset"))

	_, err = repo.GetCityID(context.Background(), "hp-1")
	assert.ErrorIs(t, err, ErrExecQuery)
}
