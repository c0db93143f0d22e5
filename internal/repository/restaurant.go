package repository

import (
	"context"
	"database/sql"
	"errors"

	"restaurant-service/internal/entity"
)

// RestaurantStore is the persistence contract used by the restaurant service.
type RestaurantStore interface {
	FindAll(ctx context.Context) ([]entity.Restaurant, error)
	FindByID(ctx context.Context, id int) (*entity.Restaurant, error)
	FindByCNPJ(ctx context.Context, cnpj string) (*entity.Restaurant, error)
	Insert(ctx context.Context, in entity.RestaurantInput) (*entity.Restaurant, error)
	Replace(ctx context.Context, id int, in entity.RestaurantInput) (*entity.Restaurant, error)
	Delete(ctx context.Context, id int) error
}

const restaurantColumns = `id, cnpj, name, state, city, type, operating_hours, postal_code, street_number`

type RestaurantRepository struct {
	db *sql.DB
}

func NewRestaurantRepository(db *sql.DB) *RestaurantRepository {
	return &RestaurantRepository{db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row rowScanner) (*entity.Restaurant, error) {
	var r entity.Restaurant
	var hours sql.NullString
	err := row.Scan(&r.ID, &r.CNPJ, &r.Name, &r.State, &r.City, &r.Type, &hours, &r.PostalCode, &r.StreetNumber)
	if err != nil {
		return nil, err
	}
	r.OperatingHours = hours.String
	return &r, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *RestaurantRepository) FindAll(ctx context.Context) ([]entity.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := []entity.Restaurant{}
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *restaurant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return restaurants, nil
}

func (r *RestaurantRepository) FindByID(ctx context.Context, id int) (*entity.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = ?`
	restaurant, err := scanRestaurant(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return restaurant, err
}

func (r *RestaurantRepository) FindByCNPJ(ctx context.Context, cnpj string) (*entity.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE cnpj = ?`
	restaurant, err := scanRestaurant(r.db.QueryRowContext(ctx, query, cnpj))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return restaurant, err
}

// Insert relies on the unique cnpj index, so concurrent inserts of the same
// CNPJ cannot both succeed.
func (r *RestaurantRepository) Insert(ctx context.Context, in entity.RestaurantInput) (*entity.Restaurant, error) {
	query := `INSERT INTO restaurants (cnpj, name, state, city, type, operating_hours, postal_code, street_number) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, in.CNPJ, in.Name, in.State, in.City, in.Type, nullable(in.OperatingHours), in.PostalCode, in.StreetNumber)
	if err != nil {
		if _, dup := duplicateKey(err); dup {
			return nil, ErrDuplicateBusinessID
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	restaurant := in.ToRestaurant(int(id))
	return &restaurant, nil
}

// Replace overwrites every mutable field. A missing id is detected through
// the affected row count, which requires clientFoundRows on MySQL so that an
// update with identical values still counts as a match.
func (r *RestaurantRepository) Replace(ctx context.Context, id int, in entity.RestaurantInput) (*entity.Restaurant, error) {
	query := `UPDATE restaurants SET cnpj = ?, name = ?, state = ?, city = ?, type = ?, operating_hours = ?, postal_code = ?, street_number = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, in.CNPJ, in.Name, in.State, in.City, in.Type, nullable(in.OperatingHours), in.PostalCode, in.StreetNumber, id)
	if err != nil {
		if _, dup := duplicateKey(err); dup {
			return nil, ErrDuplicateBusinessID
		}
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	restaurant := in.ToRestaurant(id)
	return &restaurant, nil
}

func (r *RestaurantRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM restaurants WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
