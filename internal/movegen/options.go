package movegen

import "fmt"

// PromotionMode selects which promotions are generated. A queen promotion
// is always included.
type PromotionMode uint8

const (
	// PromoteAll generates queen, knight, rook and bishop promotions.
	PromoteAll PromotionMode = iota
	// PromoteQueenOnly generates only queen promotions.
	PromoteQueenOnly
	// PromoteQueenAndKnight generates queen and knight promotions.
	PromoteQueenAndKnight
)

func (m PromotionMode) String() string {
	switch m {
	case PromoteAll:
		return "all"
	case PromoteQueenOnly:
		return "queen"
	case PromoteQueenAndKnight:
		return "queen-knight"
	default:
		return fmt.Sprintf("PromotionMode(%d)", uint8(m))
	}
}

// ParsePromotionMode accepts the names returned by PromotionMode.String.
func ParsePromotionMode(s string) (PromotionMode, error) {
	switch s {
	case "all", "":
		return PromoteAll, nil
	case "queen":
		return PromoteQueenOnly, nil
	case "queen-knight":
		return PromoteQueenAndKnight, nil
	}
	return PromoteAll, fmt.Errorf("unknown promotion mode %q", s)
}

// Config parameterises a single Generate call. The zero value generates
// every legal move with the default tables.
type Config struct {
	// Tables defaults to DefaultTables().
	Tables *Tables
	// Promotions selects the promotion pieces.
	Promotions PromotionMode
	// ExcludeQuiet restricts generation to captures and promotions.
	ExcludeQuiet bool
}

func (c Config) tables() *Tables {
	if c.Tables != nil {
		return c.Tables
	}
	return DefaultTables()
}

// Option configures a Generator.
type Option func(*Config)

// WithPromotionMode sets the promotion mode.
func WithPromotionMode(mode PromotionMode) Option {
	return func(c *Config) {
		c.Promotions = mode
	}
}

// WithTables makes the Generator use t instead of DefaultTables().
func WithTables(t *Tables) Option {
	return func(c *Config) {
		c.Tables = t
	}
}
