package engine

import "fmt"

// Config contains the evaluation engine configuration: allow-lists and
// defaults shared by every evaluation. It is read-only after construction.
type Config struct {
	// SubmissionWindowDays is the default window for the date_too_old
	// check when a rule does not declare submission_window_days.
	SubmissionWindowDays int

	// MaxTreeDepth bounds constraint-tree recursion. Subtrees beyond the
	// limit are skipped, never an error.
	MaxTreeDepth int

	// Currencies is the closed set of accepted currency codes.
	Currencies []string

	// FileFormats is the closed set of accepted receipt file formats.
	FileFormats []string

	// ReceiptTypes is the closed set of accepted receipt types.
	ReceiptTypes []string

	// Approvers is the closed set of accepted approver roles.
	Approvers []string

	// DefaultThreshold is the default amount threshold for template text.
	DefaultThreshold float64

	// DefaultLimit is the default amount ceiling for template text.
	DefaultLimit float64

	// DefaultMinimum is the default amount floor for template text.
	DefaultMinimum float64

	// MaxFileSize is the default maximum upload size for template text.
	MaxFileSize string
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		SubmissionWindowDays: 30,
		MaxTreeDepth:         32,
		Currencies:           []string{"JPY", "USD", "EUR"},
		FileFormats:          []string{"JPEG", "PNG", "PDF"},
		ReceiptTypes:         []string{"receipt", "invoice", "credit_card"},
		Approvers:            []string{"manager", "director", "vp"},
		DefaultThreshold:     1000,
		DefaultLimit:         1000000,
		DefaultMinimum:       0,
		MaxFileSize:          "10MB",
	}
}

// Validate checks the configuration for values the engine cannot work
// with.
func (c *Config) Validate() error {
	if c.SubmissionWindowDays <= 0 {
		return fmt.Errorf("submission window must be positive, got %d", c.SubmissionWindowDays)
	}
	if c.MaxTreeDepth <= 0 {
		return fmt.Errorf("max tree depth must be positive, got %d", c.MaxTreeDepth)
	}
	if len(c.Currencies) == 0 {
		return fmt.Errorf("currency allow-list cannot be empty")
	}
	return nil
}

// allowsCurrency reports membership in the currency allow-list.
func (c *Config) allowsCurrency(code string) bool {
	return contains(c.Currencies, code)
}

// allowsReceiptType reports membership in the receipt-type allow-list.
func (c *Config) allowsReceiptType(rt string) bool {
	return contains(c.ReceiptTypes, rt)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
