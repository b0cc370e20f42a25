package models

import "fmt"

type OptionType string

func (o OptionType) Validate() error {
	if o != Call {
		return fmt.Errorf("OptionType: Validate: %s: %w", o, UnsupportedOptionTypeErr)
	}

	return nil
}

const (
	Call OptionType = "call"
)
