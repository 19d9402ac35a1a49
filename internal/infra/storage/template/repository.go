package template

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	"github.com/m04kA/HPS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/HPS-BookingService/pkg/psqlbuilder"
)

// ActiveTemplate шаблон вместе с описанием услуги (для выдачи слотов)
type ActiveTemplate struct {
	Template           *domain.ScheduleTemplate
	ServiceDescription string
}

var templateColumns = []string{
	"st.id",
	"st.name",
	"st.health_post_id",
	"st.service_id",
	"st.city_id",
	"st.days_of_week",
	"st.time_slot",
	"st.slots_per_time",
	"st.start_date",
	"st.end_date",
	"st.is_active",
	"st.created_at",
	"st.updated_at",
}

// Repository репозиторий для работы с шаблонами расписания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория шаблонов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetActiveForDate получает активные шаблоны поста/услуги, чьё окно
// действия покрывает дату. В SQL применяются фильтры is_active и диапазона
// дат (открытый end_date = бессрочно); принадлежность дня недели проверяет
// вызывающая сторона через domain.WeekdaySet - преобразование даты в индекс
// дня недели живёт в одной точке, а не в двух диалектах.
func (r *Repository) GetActiveForDate(ctx context.Context, healthPostID, serviceID string, date time.Time) ([]ActiveTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	columns := append(append([]string{}, templateColumns...), "s.requirements")

	query, args, err := psqlbuilder.Select(columns...).
		From("schedule_templates st").
		Join("services s ON s.id = st.service_id").
		Where(squirrel.Eq{
			"st.health_post_id": healthPostID,
			"st.service_id":     serviceID,
			"st.is_active":      true,
		}).
		Where(squirrel.LtOrEq{"st.start_date": date}).
		Where(squirrel.Or{
			squirrel.Eq{"st.end_date": nil},
			squirrel.GtOrEq{"st.end_date": date},
		}).
		OrderBy("st.time_slot ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveForDate - build select query: %v", ErrBuildQuery, err)
	}

	// Ошибка драйвера остаётся в цепочке: внутри сериализуемой транзакции
	// txmanager по коду SQLSTATE распознаёт конфликт и повторяет попытку
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveForDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	templates := make([]ActiveTemplate, 0)
	for rows.Next() {
		tpl, description, err := r.scanTemplateWithService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetActiveForDate - scan row: %w", ErrScanRow, err)
		}
		templates = append(templates, ActiveTemplate{Template: tpl, ServiceDescription: description})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetActiveForDate - rows error: %w", ErrScanRow, err)
	}

	return templates, nil
}

// Create создает новый шаблон расписания
func (r *Repository) Create(ctx context.Context, tpl *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedule_templates").
		Columns(
			"id",
			"name",
			"health_post_id",
			"service_id",
			"city_id",
			"days_of_week",
			"time_slot",
			"slots_per_time",
			"start_date",
			"end_date",
			"is_active",
		).
		Values(
			tpl.ID,
			tpl.Name,
			tpl.HealthPostID,
			tpl.ServiceID,
			tpl.CityID,
			tpl.DaysOfWeek,
			tpl.TimeSlot,
			tpl.SlotsPerTime,
			tpl.StartDate,
			tpl.EndDate,
			tpl.IsActive,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	tpl.CreatedAt = createdAt.Time
	tpl.UpdatedAt = updatedAt.Time

	return tpl, nil
}

// GetByID получает шаблон по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(templateColumns...).
		From("schedule_templates st").
		Where(squirrel.Eq{"st.id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	tpl, err := r.scanTemplate(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan template: %v", ErrScanRow, err)
	}

	return tpl, nil
}

// GetByCity получает все шаблоны города для интерфейса персонала
func (r *Repository) GetByCity(ctx context.Context, cityID string) ([]*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(templateColumns...).
		From("schedule_templates st").
		Where(squirrel.Eq{"st.city_id": cityID}).
		OrderBy("st.name ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByCity - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCity - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	templates := make([]*domain.ScheduleTemplate, 0)
	for rows.Next() {
		tpl, err := r.scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByCity - scan row: %v", ErrScanRow, err)
		}
		templates = append(templates, tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByCity - rows error: %v", ErrScanRow, err)
	}

	return templates, nil
}

// Update обновляет шаблон расписания целиком
func (r *Repository) Update(ctx context.Context, tpl *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("schedule_templates").
		Set("name", tpl.Name).
		Set("health_post_id", tpl.HealthPostID).
		Set("service_id", tpl.ServiceID).
		Set("days_of_week", tpl.DaysOfWeek).
		Set("time_slot", tpl.TimeSlot).
		Set("slots_per_time", tpl.SlotsPerTime).
		Set("start_date", tpl.StartDate).
		Set("end_date", tpl.EndDate).
		Set("is_active", tpl.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": tpl.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	tpl.CreatedAt = createdAt.Time
	tpl.UpdatedAt = updatedAt.Time

	return tpl, nil
}

// Delete удаляет шаблон расписания
func (r *Repository) Delete(ctx context.Context, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("schedule_templates").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

// rowScanner общий интерфейс для *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanTemplate(row rowScanner) (*domain.ScheduleTemplate, error) {
	var tpl domain.ScheduleTemplate
	var endDate, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.HealthPostID,
		&tpl.ServiceID,
		&tpl.CityID,
		&tpl.DaysOfWeek,
		&tpl.TimeSlot,
		&tpl.SlotsPerTime,
		&tpl.StartDate,
		&endDate,
		&tpl.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if endDate.Valid {
		tpl.EndDate = &endDate.Time
	}
	tpl.CreatedAt = createdAt.Time
	tpl.UpdatedAt = updatedAt.Time

	return &tpl, nil
}

func (r *Repository) scanTemplateWithService(row rowScanner) (*domain.ScheduleTemplate, string, error) {
	var tpl domain.ScheduleTemplate
	var endDate, createdAt, updatedAt sql.NullTime
	var description sql.NullString

	err := row.Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.HealthPostID,
		&tpl.ServiceID,
		&tpl.CityID,
		&tpl.DaysOfWeek,
		&tpl.TimeSlot,
		&tpl.SlotsPerTime,
		&tpl.StartDate,
		&endDate,
		&tpl.IsActive,
		&createdAt,
		&updatedAt,
		&description,
	)
	if err != nil {
		return nil, "", err
	}

	if endDate.Valid {
		tpl.EndDate = &endDate.Time
	}
	tpl.CreatedAt = createdAt.Time
	tpl.UpdatedAt = updatedAt.Time

	return &tpl, description.String, nil
}
