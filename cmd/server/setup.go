package main

import (
	"io"

	"gorm.io/gorm"

	"rideconnect/internal/config"
	"rideconnect/internal/logger"
	"rideconnect/internal/middleware"
)

// setup loads configuration, starts file logging and configures token
// signing. The returned writer is the rotated log file.
func setup() (*config.Config, io.Writer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	w := logger.Setup(cfg.Log.File, cfg.Log.Level)
	middleware.Configure(cfg.JWT.Secret, cfg.JWT.TTL)
	return cfg, w, nil
}

// openDB is setup followed by connecting and migrating the database.
func openDB() (*config.Config, *gorm.DB, io.Writer, error) {
	cfg, w, err := setup()
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := config.InitDB(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, db, w, nil
}
