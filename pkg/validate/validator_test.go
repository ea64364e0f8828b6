package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/coverbotdev/coverbot/pkg/encoding"
)

type widget struct {
	Count int `json:"count"`
}

type widgetConfig struct {
	MaxCount int `yaml:"maxCount"`
}

func newWidgetValidator() *Validator[widget, widgetConfig] {
	decoder := encoding.NewJSONWriterDecoder[widget]("Widget", func(w *widget) error { return nil })
	return NewValidator("widget", decoder, func(w widget, c widgetConfig) error {
		if w.Count > c.MaxCount {
			return fmt.Errorf("%w: %d found > %d allowed", ErrValidation, w.Count, c.MaxCount)
		}
		return nil
	})
}

func TestValidator(t *testing.T) {
	configYAML := "widget:\n  maxCount: 5\n"

	t.Run("pass", func(t *testing.T) {
		buf := new(bytes.Buffer)
		_ = json.NewEncoder(buf).Encode(&widget{Count: 3})
		if err := newWidgetValidator().ValidateFrom(buf, strings.NewReader(configYAML)); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("fail", func(t *testing.T) {
		buf := new(bytes.Buffer)
		_ = json.NewEncoder(buf).Encode(&widget{Count: 9})
		err := newWidgetValidator().ValidateFrom(buf, strings.NewReader(configYAML))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("want %v got %v", ErrValidation, err)
		}
	})

	t.Run("missing-config-field", func(t *testing.T) {
		buf := new(bytes.Buffer)
		_ = json.NewEncoder(buf).Encode(&widget{Count: 3})
		err := newWidgetValidator().ValidateFrom(buf, strings.NewReader("other:\n  maxCount: 5\n"))
		if !errors.Is(err, ErrConfig) {
			t.Fatalf("want %v got %v", ErrConfig, err)
		}
	})

	t.Run("bad-object", func(t *testing.T) {
		err := newWidgetValidator().ValidateFrom(strings.NewReader("{{"), strings.NewReader(configYAML))
		if !errors.Is(err, ErrInput) {
			t.Fatalf("want %v got %v", ErrInput, err)
		}
	})

	t.Run("wrong-object-type", func(t *testing.T) {
		err := newWidgetValidator().Validate(&struct{}{}, strings.NewReader(configYAML))
		if !errors.Is(err, ErrInput) {
			t.Fatalf("want %v got %v", ErrInput, err)
		}
	})
}

func TestConfigByField(t *testing.T) {
	config, err := ConfigByField[widgetConfig](strings.NewReader("widget:\n  maxCount: 7\n"), "widget")
	if err != nil {
		t.Fatal(err)
	}
	if config.MaxCount != 7 {
		t.Fatalf("got %d", config.MaxCount)
	}

	if _, err := ConfigByField[widgetConfig](strings.NewReader(":bad yaml:["), "widget"); !errors.Is(err, ErrConfig) {
		t.Fatalf("want %v got %v", ErrConfig, err)
	}
}
