package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// tagBatchConcurrency is reported when batch concurrency exceeds the batch size.
const tagBatchConcurrency = "batch_concurrency"

// tagRetryInterval is reported when the retry interval bounds are inverted.
const tagRetryInterval = "retry_interval"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateAgeConfig, AgeConfig{})
	v.RegisterStructValidation(validateRetryConfig, RetryConfig{})

	return v
}

// validateAgeConfig rejects a worker count larger than the largest batch,
// since the extra workers could never be scheduled.
func validateAgeConfig(sl validator.StructLevel) {
	age, ok := sl.Current().Interface().(AgeConfig)
	if !ok || age.MaxBatchSize == 0 {
		return
	}

	if age.BatchConcurrency > age.MaxBatchSize {
		sl.ReportError(age.BatchConcurrency, "BatchConcurrency", "BatchConcurrency",
			tagBatchConcurrency, "age.maxbatchsize")
	}
}

func validateRetryConfig(sl validator.StructLevel) {
	retry, ok := sl.Current().Interface().(RetryConfig)
	if !ok || retry.InitialInterval == 0 || retry.MaxInterval == 0 {
		return
	}

	if retry.InitialInterval > retry.MaxInterval {
		sl.ReportError(retry.InitialInterval, "InitialInterval", "InitialInterval",
			tagRetryInterval, "client.retry.maxinterval")
	}
}

// Validate checks the configuration. The service refuses to start on error.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

func formatValidationErrors(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	errs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "ip", "cidr":
		return fmt.Sprintf("%s must be an IP or CIDR", field)
	case tagBatchConcurrency, tagRetryInterval:
		return fmt.Sprintf("%s must not exceed %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath turns "Config.Server.Port" into "server.port".
func formatFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}
