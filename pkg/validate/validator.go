package validate

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var ErrValidation = errors.New("validation error")
var ErrInput = errors.New("cannot validate, invalid object to be validated")
var ErrConfig = errors.New("cannot validate, invalid configuration")

type WriterDecoder interface {
	io.Writer
	Decode() (any, error)
	DecodeFrom(io.Reader) (any, error)
}

type Validator[ObjectT any, ConfigT any] struct {
	objDecoder       WriterDecoder
	configFieldName  string
	validateFunction func(ObjectT, ConfigT) error
}

func NewValidator[ObjectT any, ConfigT any](configFieldName string, objectDecoder WriterDecoder, validateFunc func(ObjectT, ConfigT) error) *Validator[ObjectT, ConfigT] {
	return &Validator[ObjectT, ConfigT]{
		configFieldName:  configFieldName,
		objDecoder:       objectDecoder,
		validateFunction: validateFunc,
	}
}

func (v *Validator[ObjectT, ConfigT]) Validate(objPtr any, configReader io.Reader) error {
	c, err := ConfigByField[ConfigT](configReader, v.configFieldName)
	if err != nil {
		return err
	}

	o, ok := objPtr.(*ObjectT)
	if !ok {
		return fmt.Errorf("%w: Invalid object type '%T'", ErrInput, objPtr)
	}
	return v.validateFunction(*o, c)
}

func (v *Validator[ObjectT, ConfigT]) ValidateFrom(objReader io.Reader, configReader io.Reader) error {
	o, err := v.objDecoder.DecodeFrom(objReader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInput, err)
	}

	return v.Validate(o, configReader)
}

// ConfigByField decodes a single named top-level field from a YAML
// configuration document.
func ConfigByField[ConfigT any](configReader io.Reader, fieldName string) (ConfigT, error) {
	var config ConfigT
	configMap := make(map[string]ConfigT)

	if err := yaml.NewDecoder(configReader).Decode(configMap); err != nil {
		return config, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	config, ok := configMap[fieldName]
	if !ok {
		return config, fmt.Errorf("%w: No configuration provided for field '%s'", ErrConfig, fieldName)
	}
	return config, nil
}
