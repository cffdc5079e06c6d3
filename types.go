package lsystem

import (
	"fmt"
	"math/rand"
	"time"
)

// SourcePosition tracks the position of a token in a definition
type SourcePosition struct {
	Line     int
	Column   int // in characters, from 1
	Offset   int // in bytes, from 0
	Length   int // in characters
	Filename string
}

// String renders the position the way error messages print it
func (p SourcePosition) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// RandomSource draws uniform numbers in [0,1) for stochastic productions.
// *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Config holds configuration for parsing and deriving
type Config struct {
	Debug      bool         // Enable debug logging
	Filename   string       // Name reported in positions
	Seed       int64        // Seed for the random source, 0 picks one from the clock
	Random     RandomSource // Overrides Seed when set
	MaxModules int          // Derivation fails when a generation grows beyond this, 0 disables the check
	Logger     *Logger      // Shared logger, a fresh one is created when nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Debug:      false,
		Filename:   "",
		Seed:       0,
		MaxModules: 1 << 20,
	}
}

func (c *Config) logger() *Logger {
	if c.Logger != nil {
		return c.Logger
	}
	l := NewLogger(c.Debug)
	if c.Debug {
		l.EnableAllCategories()
	}
	c.Logger = l
	return l
}

func (c *Config) random() RandomSource {
	if c.Random != nil {
		return c.Random
	}
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
