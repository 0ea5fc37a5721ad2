// cmd/seed/main.go — Carga datos de demo: cupón VERANO10 y un anillo con tallas
// en el catálogo y en el inventario.
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"time"

	"aceves/internal/config"
	"aceves/internal/infra"
	"aceves/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, true)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	ctx := context.Background()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := seedCupon(tx); err != nil {
			return err
		}
		if err := seedCatalogo(tx); err != nil {
			return err
		}
		return seedInventario(tx)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Msg("✅ datos de demo cargados")
}

func seedCupon(tx *gorm.DB) error {
	cupon := model.Coupon{
		Code:              "VERANO10",
		DiscountType:      model.DescuentoPorcentaje,
		DiscountValue:     decimal.NewFromInt(10),
		MinPurchaseAmount: decimal.NewFromInt(500),
		IsActive:          true,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"discount_type", "discount_value", "min_purchase_amount", "is_active"}),
	}).Create(&cupon).Error
}

func seedCatalogo(tx *gorm.DB) error {
	tallas := datatypes.JSONSlice[model.TallaStock]{
		{Size: "6", Stock: 2},
		{Size: "7", Stock: 5},
		{Size: "8", Stock: 0},
	}
	original := decimal.NewFromInt(1450)
	producto := model.Producto{
		ID:            "anillo-luna-plata-demo",
		Name:          "Anillo Luna Plata .925",
		Category:      "anillos",
		Price:         decimal.NewFromInt(1200),
		Description:   "Anillo de plata .925 con acabado pulido.",
		Images:        datatypes.JSONSlice[string]{"/img/anillo-luna.jpg"},
		Sizes:         &tallas,
		OriginalPrice: &original,
		CreatedAt:     time.Now(),
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&producto).Error
}

func seedInventario(tx *gorm.DB) error {
	var existe int64
	if err := tx.Model(&model.ProductoInventario{}).Where("nombre = ?", "Anillo Luna Plata .925").Count(&existe).Error; err != nil {
		return err
	}
	if existe > 0 {
		return nil
	}
	p := model.ProductoInventario{
		Nombre:      "Anillo Luna Plata .925",
		Tipo:        model.TipoAnillo,
		Precio:      decimal.NewFromInt(1200),
		StockMinimo: 2,
		Activo:      true,
	}
	if err := tx.Omit("Variaciones").Create(&p).Error; err != nil {
		return err
	}
	for talla, stock := range map[string]int{"6": 2, "7": 5, "8": 0} {
		v := model.ProductoVariacion{ProductoID: p.ID, Talla: talla, Stock: stock}
		if err := tx.Create(&v).Error; err != nil {
			return err
		}
	}
	return nil
}
