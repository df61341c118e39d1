package models

import (
	"reflect"
	"testing"

	"gorm.io/gorm"
)

// Deletes are hard everywhere. A gorm.DeletedAt field anywhere in the schema
// would turn them soft, leaving unique email and admission-number slots
// occupied by dead rows.
func TestNoSoftDeleteColumns(t *testing.T) {
	records := []interface{}{
		BaseModel{},
		School{},
		User{},
		Student{},
		Teacher{},
		Timetable{},
		AcademicYearReport{},
		Activity{},
		RefreshToken{},
	}

	deletedAt := reflect.TypeOf(gorm.DeletedAt{})
	for _, record := range records {
		rt := reflect.TypeOf(record)
		for i := 0; i < rt.NumField(); i++ {
			if rt.Field(i).Type == deletedAt {
				t.Errorf("%s.%s makes deletes soft; deletes must be hard", rt.Name(), rt.Field(i).Name)
			}
		}
	}
}
