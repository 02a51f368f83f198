package models

import (
	"github.com/machinecraft/inventory_backend/config"
	"gorm.io/gorm"
)

func defaultDB() *gorm.DB {
	return config.GetDB()
}
