package model

import (
	"database/sql/driver"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringArray is a text[] column on Postgres and a text column elsewhere.
// Values are encoded in the Postgres array literal format in both cases.
type StringArray []string

// GormDBDataType picks the column type per dialect.
func (StringArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	return pq.StringArray(a).Value()
}

// Scan implements sql.Scanner.
func (a *StringArray) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*a = StringArray(arr)
	return nil
}

// UUIDs parses the elements as UUIDs, skipping malformed ones.
func (a StringArray) UUIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(a))
	for _, s := range a {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// StringArrayFromUUIDs encodes ids as strings.
func StringArrayFromUUIDs(ids []uuid.UUID) StringArray {
	out := make(StringArray, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
