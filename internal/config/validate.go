package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnnotation(); err != nil {
		return err
	}
	if err := c.validateInstrument(); err != nil {
		return err
	}
	if c.Output.Dataset == "" {
		return errors.New("output.dataset must be set")
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAnnotation() error {
	a := c.Annotation
	columns := map[string]int{
		"annotation.start_column": a.StartColumn,
		"annotation.end_column":   a.EndColumn,
		"annotation.label_column": a.LabelColumn,
	}
	for key, value := range columns {
		if value < 0 {
			return fmt.Errorf("%s must be zero or positive", key)
		}
	}
	if a.StartColumn == a.EndColumn || a.StartColumn == a.LabelColumn || a.EndColumn == a.LabelColumn {
		return errors.New("annotation columns must be distinct")
	}
	if math.IsNaN(a.BoundaryGap) || math.IsInf(a.BoundaryGap, 0) || a.BoundaryGap < 0 {
		return errors.New("annotation.boundary_gap must be a finite, non-negative number")
	}
	return nil
}

func (c *Config) validateInstrument() error {
	if c.Instrument.Variable == "" {
		return errors.New("instrument.variable must be set")
	}
	if c.Instrument.Extension == "" {
		return errors.New("instrument.extension must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
