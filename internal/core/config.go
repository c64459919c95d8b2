package core

// RuntimeConfig contains configuration passed to the front end at
// initialization.
type RuntimeConfig struct {
	ScreenW int   // Screen width in characters
	ScreenH int   // Screen height in characters
	Seed    int64 // RNG seed for deterministic gameplay
}
