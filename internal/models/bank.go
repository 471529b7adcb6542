package models

import "strings"

// Bank is an account a CSV export can come from.
type Bank struct {
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	Currency string `json:"currency" yaml:"currency" mapstructure:"currency"`
}

// FindBank returns the bank whose name matches case-insensitively.
func FindBank(banks []Bank, name string) (Bank, bool) {
	name = strings.TrimSpace(name)
	for _, b := range banks {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return Bank{}, false
}
