package transport

import (
	"encoding/json"
	"strings"
	"testing"
)

type optionalHolder struct {
	Field OptionalString `json:"field,omitzero"`
}

func TestOptionalStringAbsentIsOmitted(t *testing.T) {
	data, err := json.Marshal(optionalHolder{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("unset field should be omitted, got %s", data)
	}
}

func TestOptionalStringNullAndValue(t *testing.T) {
	data, err := json.Marshal(optionalHolder{Field: Some(nil)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"field":null}` {
		t.Errorf("set-but-nil should marshal as null, got %s", data)
	}

	value := "Fastighet A"
	data, err = json.Marshal(optionalHolder{Field: Some(&value)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"field":"Fastighet A"}` {
		t.Errorf("unexpected value marshaling: %s", data)
	}
}

func TestOptionalStringUnmarshal(t *testing.T) {
	var holder optionalHolder
	if err := json.Unmarshal([]byte(`{"field":null}`), &holder); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !holder.Field.Set || holder.Field.Value != nil {
		t.Errorf("explicit null should be set with nil value: %+v", holder.Field)
	}

	holder = optionalHolder{}
	if err := json.Unmarshal([]byte(`{"field":"Centrum"}`), &holder); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !holder.Field.Set || holder.Field.Value == nil || *holder.Field.Value != "Centrum" {
		t.Errorf("unexpected unmarshal result: %+v", holder.Field)
	}

	holder = optionalHolder{}
	if err := json.Unmarshal([]byte(`{}`), &holder); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if holder.Field.Set {
		t.Errorf("absent field should stay unset: %+v", holder.Field)
	}

	if err := json.Unmarshal([]byte(`{"field":7}`), &holder); err == nil || !strings.Contains(err.Error(), "cannot unmarshal") {
		t.Errorf("expected type error, got %v", err)
	}
}
