package database

import (
	"context"
	"fmt"
	"time"

	"asset-manager-api/internal/domain/billing"
	"asset-manager-api/internal/domain/inventory"
	"asset-manager-api/internal/domain/organizations"
	"asset-manager-api/internal/domain/users"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Models lists every table owned by this service.
func Models() []interface{} {
	return []interface{}{
		&organizations.Organization{},
		&users.User{},
		&billing.Payment{},
		&inventory.Hardware{},
		&inventory.Software{},
		&inventory.Ticket{},
		&inventory.Telemetry{},
	}
}

// InitDB connects to Postgres and migrates the schema.
func InitDB(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	logger.Info("connected and migrated postgres")
	return db, nil
}

// InitMongo connects to MongoDB and returns the named database.
func InitMongo(ctx context.Context, uri, name string, logger *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to mongo", zap.String("database", name))
	return client, client.Database(name), nil
}
