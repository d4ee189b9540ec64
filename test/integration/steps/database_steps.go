//go:build integration

package steps

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cucumber/godog"
)

func registerDatabaseSteps(ctx *godog.ScenarioContext, t *TestContext) {
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, t.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, t.theDbShouldContainObjectsInWithTheValues)
}

func (t *TestContext) countRows(table string, criteria map[string]any) (int, error) {
	entity, ok := t.db.GetModel(table)
	if !ok {
		return 0, fmt.Errorf("table '%s' not found in models", table)
	}

	entityType := reflect.TypeOf(entity).Elem()
	entitySlicePtr := reflect.New(reflect.SliceOf(entityType))

	query := t.db.DbConn.Unscoped()
	for key, value := range criteria {
		if s, ok := value.(string); ok {
			value = t.replacePlaceholders(s)
		}
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}
	if err := query.Find(entitySlicePtr.Interface()).Error; err != nil {
		return 0, err
	}
	return entitySlicePtr.Elem().Len(), nil
}

func (t *TestContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	count, err := t.countRows(table, nil)
	if err != nil {
		return err
	}
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s', got %d", quantity, table, count)
	}
	return nil
}

func (t *TestContext) theDbShouldContainObjectsInWithTheValues(quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	if err := json.Unmarshal([]byte(content.Content), &criteria); err != nil {
		return err
	}

	count, err := t.countRows(table, criteria)
	if err != nil {
		return err
	}
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
	}
	return nil
}
