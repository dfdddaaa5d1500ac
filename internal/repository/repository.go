package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Spec narrows a query. Specs compose left to right on the same statement.
type Spec func(db *gorm.DB) *gorm.DB

// Repository is the generic persistence contract. Reads execute immediately;
// Add, Update and Remove only queue work on the current change-set, nothing
// touches the database until SaveChanges commits the whole set in one
// transaction.
type Repository[T any] interface {
	Get(ctx context.Context, specs ...Spec) (*T, error)
	List(ctx context.Context, specs ...Spec) ([]T, error)
	Count(ctx context.Context, specs ...Spec) (int64, error)
	Add(entity *T)
	Update(entity *T)
	Remove(entity *T)

	// Session returns a repository with its own empty change-set, isolated
	// from every other session over the same database.
	Session() Repository[T]
	SaveChanges(ctx context.Context) error
}

// GormRepository implements Repository on top of gorm.
type GormRepository[T any] struct {
	db      *gorm.DB
	pending []func(tx *gorm.DB) error
}

func NewGormRepository[T any](db *gorm.DB) *GormRepository[T] {
	return &GormRepository[T]{db: db}
}

func (r *GormRepository[T]) apply(ctx context.Context, specs []Spec) *gorm.DB {
	query := r.db.WithContext(ctx).Model(new(T))
	for _, spec := range specs {
		query = spec(query)
	}
	return query
}

// Get returns the first matching entity, or nil when nothing matches.
func (r *GormRepository[T]) Get(ctx context.Context, specs ...Spec) (*T, error) {
	var entity T
	err := r.apply(ctx, specs).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

func (r *GormRepository[T]) List(ctx context.Context, specs ...Spec) ([]T, error) {
	var entities []T
	if err := r.apply(ctx, specs).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *GormRepository[T]) Count(ctx context.Context, specs ...Spec) (int64, error) {
	var count int64
	if err := r.apply(ctx, specs).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormRepository[T]) Add(entity *T) {
	r.pending = append(r.pending, func(tx *gorm.DB) error {
		return tx.Create(entity).Error
	})
}

func (r *GormRepository[T]) Update(entity *T) {
	r.pending = append(r.pending, func(tx *gorm.DB) error {
		return tx.Save(entity).Error
	})
}

func (r *GormRepository[T]) Remove(entity *T) {
	r.pending = append(r.pending, func(tx *gorm.DB) error {
		return tx.Delete(entity).Error
	})
}

// Session returns a copy with an empty change-set sharing the connection.
func (r *GormRepository[T]) Session() Repository[T] {
	return &GormRepository[T]{db: r.db}
}

// SaveChanges runs every queued operation inside a single transaction and
// clears the change-set on success. A cancelled context aborts before any
// write is attempted.
func (r *GormRepository[T]) SaveChanges(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range r.pending {
			if err := op(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.pending = nil
	return nil
}
