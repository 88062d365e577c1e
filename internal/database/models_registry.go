package database

import "inkwell/internal/models"

// RegisteredModels returns every model AutoMigrate manages, in dependency
// order. New models must be appended here or cmd/migrate will not create
// their tables.
func RegisteredModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.ArchivedPost{},
		&models.Image{},
		&models.ImageVariant{},
	}
}
