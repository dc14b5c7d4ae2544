package events

import (
	"log/slog"
	"reflect"
)

// Subject reads the TableID and PlayerID string fields of an event. Missing
// fields come back empty.
func Subject(event Event) (tableID, playerID string) {
	val := reflect.ValueOf(event)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return "", ""
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return "", ""
	}
	return stringField(val, "TableID"), stringField(val, "PlayerID")
}

func stringField(val reflect.Value, name string) string {
	f := val.FieldByName(name)
	if f.IsValid() && f.Kind() == reflect.String {
		return f.String()
	}
	return ""
}

// LogAttrs describes an event for structured logging
func LogAttrs(event Event) []any {
	tableID, playerID := Subject(event)
	attrs := []any{slog.String("event", event.Name()), slog.String("table", tableID)}
	if playerID != "" {
		attrs = append(attrs, slog.String("player", playerID))
	}
	return attrs
}
