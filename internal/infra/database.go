package infra

import (
	"fmt"

	"aceves/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. When autoMigrate is
// set the schema is created/updated with RunMigrations; otherwise it is
// expected to exist already (Supabase-managed).
func NewDatabase(dsn string, autoMigrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if autoMigrate {
		if err := RunMigrations(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// RunMigrations creates every table through AutoMigrate and then applies the
// constraints GORM cannot express. Used by AUTO_MIGRATE and the e2e suite.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Producto{},
		&model.ProductoInventario{},
		&model.ProductoVariacion{},
		&model.MovimientoInventario{},
		&model.Venta{},
		&model.AlertaStock{},
		&model.Coupon{},
		&model.UserCoupon{},
		&model.Order{},
		&model.GuestEmail{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle:
// CHECK constraints and the case-insensitive coupon code index.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"variation stock never negative", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_producto_variaciones_stock') THEN
    ALTER TABLE producto_variaciones ADD CONSTRAINT chk_producto_variaciones_stock CHECK (stock >= 0);
  END IF;
END $$`},
		{"catalog flat stock never negative", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_products_stock') THEN
    ALTER TABLE products ADD CONSTRAINT chk_products_stock CHECK (stock IS NULL OR stock >= 0);
  END IF;
END $$`},
		{"inventory tipo enum", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_inventario_tipo') THEN
    ALTER TABLE productos_inventario ADD CONSTRAINT chk_productos_inventario_tipo
      CHECK (tipo IN ('anillo', 'collar', 'otro'));
  END IF;
END $$`},
		{"movement cantidad unsigned", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_movimientos_cantidad') THEN
    ALTER TABLE movimientos_inventario ADD CONSTRAINT chk_movimientos_cantidad CHECK (cantidad >= 0);
  END IF;
END $$`},
		{"coupon uses within cap", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_coupons_uses') THEN
    ALTER TABLE coupons ADD CONSTRAINT chk_coupons_uses
      CHECK (max_uses IS NULL OR current_uses <= max_uses);
  END IF;
END $$`},
		{"coupon code case-insensitive unique",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_coupons_code_upper ON coupons (UPPER(code))`},
		{"alert sweep lookup",
			`CREATE INDEX IF NOT EXISTS idx_alertas_stock_variacion_tipo ON alertas_stock (variacion_id, tipo_alerta, created_at)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
