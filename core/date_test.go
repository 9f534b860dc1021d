package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "date only", input: "2024-01-15", want: NewDate(2024, time.January, 15)},
		{name: "rfc3339 utc", input: "2024-01-15T10:30:00Z", want: NewDate(2024, time.January, 15)},
		{name: "rfc3339 offset keeps local day", input: "2024-01-15T23:30:00+08:00", want: NewDate(2024, time.January, 15)},
		{name: "garbage", input: "15/01/2024", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.True(t, tt.want.Equal(got.Time), "ParseDate() = %v, want %v", got, tt.want)
		})
	}
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}

	data, err := json.Marshal(payload{Date: NewDate(2024, time.March, 5)})
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	assert.JSONEq(t, `{"date":"2024-03-05"}`, string(data))

	data, err = json.Marshal(payload{})
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	assert.JSONEq(t, `{"date":null}`, string(data))

	var p payload
	if err := json.Unmarshal([]byte(`{"date":"2024-03-05"}`), &p); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	assert.Equal(t, "2024-03-05", p.Date.String())
}

func TestDate_Scan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	assert.Equal(t, "2024-06-01", d.String())

	if err := d.Scan([]byte("2023-12-31")); err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	assert.Equal(t, 2023, d.Year())

	assert.Error(t, d.Scan(42))
}
