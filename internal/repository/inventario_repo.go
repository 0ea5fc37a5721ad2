package repository

import (
	"context"
	"time"

	"aceves/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventarioRepository covers inventory products and their variations.
// Methods ending in Tx must be called with a live transaction.
type InventarioRepository interface {
	CreateTx(tx *gorm.DB, p *model.ProductoInventario) error
	CreateVariacionTx(tx *gorm.DB, v *model.ProductoVariacion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductoInventario, error)
	List(ctx context.Context, incluirInactivos bool) ([]model.ProductoInventario, error)
	UpdateTx(tx *gorm.DB, p *model.ProductoInventario) error
	UpdatePrecioVariacionTx(tx *gorm.DB, variacionID uuid.UUID, precio interface{}) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// FindVariacionForUpdateTx loads a variation with a row lock.
	FindVariacionForUpdateTx(tx *gorm.DB, productoID uuid.UUID, talla string) (*model.ProductoVariacion, error)
	SetStockTx(tx *gorm.DB, variacionID uuid.UUID, stock int) error
	// DescontarStockTx decrements only when enough stock remains and reports
	// whether the row was updated.
	DescontarStockTx(tx *gorm.DB, variacionID uuid.UUID, cantidad int) (bool, error)

	// VariacionesBajoMinimo lists active variations at or below their
	// product's stock_minimo. Used by the alert sweeper.
	VariacionesBajoMinimo(ctx context.Context) ([]VariacionBajoMinimo, error)

	DB() *gorm.DB
}

// VariacionBajoMinimo is a flattened row for alert sweeping.
type VariacionBajoMinimo struct {
	ProductoID     uuid.UUID
	ProductoNombre string
	StockMinimo    int
	VariacionID    uuid.UUID
	Talla          string
	Stock          int
	UpdatedAt      time.Time
}

type inventarioRepo struct{ db *gorm.DB }

func NewInventarioRepository(db *gorm.DB) InventarioRepository { return &inventarioRepo{db: db} }

func (r *inventarioRepo) DB() *gorm.DB { return r.db }

func (r *inventarioRepo) CreateTx(tx *gorm.DB, p *model.ProductoInventario) error {
	// Variations are inserted one by one by the service.
	return tx.Omit("Variaciones").Create(p).Error
}

func (r *inventarioRepo) CreateVariacionTx(tx *gorm.DB, v *model.ProductoVariacion) error {
	return tx.Create(v).Error
}

func (r *inventarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductoInventario, error) {
	var p model.ProductoInventario
	err := r.db.WithContext(ctx).
		Preload("Variaciones", func(db *gorm.DB) *gorm.DB { return db.Order("talla ASC") }).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *inventarioRepo) List(ctx context.Context, incluirInactivos bool) ([]model.ProductoInventario, error) {
	var productos []model.ProductoInventario
	q := r.db.WithContext(ctx).
		Preload("Variaciones", func(db *gorm.DB) *gorm.DB { return db.Order("talla ASC") })
	if !incluirInactivos {
		q = q.Where("activo = true")
	}
	err := q.Order("nombre ASC").Find(&productos).Error
	return productos, err
}

func (r *inventarioRepo) UpdateTx(tx *gorm.DB, p *model.ProductoInventario) error {
	return tx.Model(&model.ProductoInventario{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"nombre":       p.Nombre,
		"tipo":         p.Tipo,
		"descripcion":  p.Descripcion,
		"precio":       p.Precio,
		"stock_minimo": p.StockMinimo,
		"activo":       p.Activo,
	}).Error
}

func (r *inventarioRepo) UpdatePrecioVariacionTx(tx *gorm.DB, variacionID uuid.UUID, precio interface{}) error {
	return tx.Model(&model.ProductoVariacion{}).Where("id = ?", variacionID).
		Update("precio_personalizado", precio).Error
}

func (r *inventarioRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.ProductoInventario{}).Where("id = ?", id).Update("activo", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *inventarioRepo) FindVariacionForUpdateTx(tx *gorm.DB, productoID uuid.UUID, talla string) (*model.ProductoVariacion, error) {
	var v model.ProductoVariacion
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("producto_id = ? AND talla = ?", productoID, talla).
		First(&v).Error
	return &v, err
}

func (r *inventarioRepo) SetStockTx(tx *gorm.DB, variacionID uuid.UUID, stock int) error {
	return tx.Model(&model.ProductoVariacion{}).Where("id = ?", variacionID).Update("stock", stock).Error
}

func (r *inventarioRepo) DescontarStockTx(tx *gorm.DB, variacionID uuid.UUID, cantidad int) (bool, error) {
	res := tx.Model(&model.ProductoVariacion{}).
		Where("id = ? AND stock >= ?", variacionID, cantidad).
		Update("stock", gorm.Expr("stock - ?", cantidad))
	return res.RowsAffected == 1, res.Error
}

func (r *inventarioRepo) VariacionesBajoMinimo(ctx context.Context) ([]VariacionBajoMinimo, error) {
	var rows []VariacionBajoMinimo
	err := r.db.WithContext(ctx).
		Table("producto_variaciones v").
		Select("p.id AS producto_id, p.nombre AS producto_nombre, p.stock_minimo, v.id AS variacion_id, v.talla, v.stock, v.updated_at").
		Joins("JOIN productos_inventario p ON p.id = v.producto_id").
		Where("p.activo = true AND v.stock <= p.stock_minimo").
		Scan(&rows).Error
	return rows, err
}
