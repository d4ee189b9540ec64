package mock

import (
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/owninstead/backend/config"
	"github.com/owninstead/backend/internal/infra/db"
)

var once sync.Once
var dbMock *Db

// Db is a shared in-memory sqlite database migrated with the application
// models. Tables are addressable by name for assertions.
type Db struct {
	DbConn   *gorm.DB
	database *db.Database
	models   map[string]any
}

// NewDb opens the database on first use and returns the same instance after.
func NewDb(name string, models ...any) *Db {
	once.Do(func() {
		dbMock = open(name, models)
	})
	return dbMock
}

func open(name string, models []any) *Db {
	database, err := db.NewConnection(&config.DatabaseConfig{
		URL: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}
	if err := database.AutoMigrate(models...); err != nil {
		panic("failed to migrate database. err: " + err.Error())
	}

	newDbMock := &Db{
		DbConn:   database.DB(),
		database: database,
		models:   map[string]any{},
	}
	for _, model := range models {
		stmt := &gorm.Statement{DB: newDbMock.DbConn}
		if err := stmt.Parse(model); err != nil {
			panic(err)
		}
		newDbMock.models[stmt.Schema.Table] = model
	}
	return newDbMock
}

// ClearDB deletes every row of every known table.
func (d *Db) ClearDB() error {
	for table, model := range d.models {
		err := d.DbConn.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		err = d.DbConn.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table).Error
		if err != nil && !strings.Contains(err.Error(), "no such table: sqlite_sequence") {
			return err
		}
	}
	return nil
}

// HealthCheck pings the underlying connection.
func (d *Db) HealthCheck() bool {
	return d.database.HealthCheck()
}

func (d *Db) GetModel(table string) (any, bool) {
	model, ok := d.models[table]
	return model, ok
}
