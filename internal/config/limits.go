package config

const (
	// DefaultMaxGroupDepth bounds nesting of groups created through the API.
	// The flattener recurses once per level.
	DefaultMaxGroupDepth = 32

	// DefaultMaxObjectsPerDocument bounds the number of objects in one
	// document. Every drag re-flattens the whole tree.
	DefaultMaxObjectsPerDocument = 10000

	// DefaultHistoryLimit is the page size of the move history
	DefaultHistoryLimit = 50

	// MaxHistoryLimit caps a requested history page
	MaxHistoryLimit = 500

	// MaxPathPoints bounds the commands of a single path
	MaxPathPoints = 4096
)
